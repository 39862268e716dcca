package lod

import "github.com/google/uuid"

// generateBuildID returns a fresh identifier for a BuildFromMesh call,
// letting callers correlate logs, cached artifacts, and BuildStats across
// a rebuild.
func generateBuildID() string {
	return uuid.NewString()
}
