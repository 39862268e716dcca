//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Cli builds a mesh grid from the OBJ file given as MESH_FILE and prints
// per-level statistics.
func (Run) Cli() error {
	mesh := envOr("MESH_FILE", "testdata/bunny.obj")
	fmt.Printf("Building mesh grid from %s...\n", mesh)
	if _, err := executeCmd("go", withArgs("run", "./cmd/meshlodctl", "-optimize", mesh), withStream()); err != nil {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
