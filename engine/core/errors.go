package core

import (
	"errors"
)

var (
	ErrUnknown = errors.New("unknown")

	// ErrAllocationFailure marks a fatal failure to grow an arena or
	// table during a build.
	ErrAllocationFailure = errors.New("allocation failure")
	// ErrConfigInvalid marks a build or grid configuration value outside
	// its accepted range.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrCoordOverflow marks a cell coordinate that does not fit the
	// 16-bit range CellCoord represents, given the requested base/step
	// and the mesh's extent.
	ErrCoordOverflow = errors.New("cell coordinate overflow")
	// ErrDegenerateMesh marks a source mesh with no triangles or with
	// only non-finite vertex coordinates.
	ErrDegenerateMesh = errors.New("degenerate mesh")
)
