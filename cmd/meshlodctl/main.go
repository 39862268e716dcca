package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lodforge/meshgrid/engine/config"
	"github.com/lodforge/meshgrid/engine/core"
	"github.com/lodforge/meshgrid/engine/lod"
	amath "github.com/lodforge/meshgrid/engine/math"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] mesh_file.obj\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to a TOML config file (overrides the defaults below)")
		maxLevel    = flag.Int("levels", 0, "octree level count; 0 auto-derives one from triangle count")
		errTol      = flag.Float64("err-tol", 0.01, "error tolerance")
		workerCount = flag.Int("workers", 8, "worker count for the build pipeline")
		optimize    = flag.Bool("optimize", false, "deduplicate vertices before building (normals are regenerated either way)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	meshFile := flag.Arg(0)
	if !strings.HasSuffix(strings.ToLower(meshFile), ".obj") {
		core.LogFatal("unsupported file type (only .obj is supported): %s", meshFile)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			core.LogFatal("loading config: %s", err.Error())
		}
		cfg = loaded
	}
	if *maxLevel > 0 {
		cfg.Levels = *maxLevel
	}
	if *errTol != 0.01 {
		cfg.ErrTol = float32(*errTol)
	}
	if *workerCount > 0 {
		cfg.WorkerCount = *workerCount
	}

	start := time.Now()
	arena := lod.NewMBuf(lod.VtxAttrNormal)
	srcMesh, err := loadOBJ(meshFile, arena)
	if err != nil {
		core.LogFatal("loading mesh: %s", err.Error())
	}
	core.LogInfo("loaded %s: %d triangles, %d vertices (%s)", meshFile, srcMesh.IndexCount/3, srcMesh.VertexCount, time.Since(start))

	if *optimize {
		start = time.Now()
		deduped := amath.GeometryDeduplicateVertices(
			arena.Positions[srcMesh.VertexOffset:srcMesh.VertexOffset+srcMesh.VertexCount],
			arena.Indices[srcMesh.IndexOffset:srcMesh.IndexOffset+srcMesh.IndexCount],
		)
		copy(arena.Positions[srcMesh.VertexOffset:], deduped)
		arena.Positions = arena.Positions[:srcMesh.VertexOffset+uint32(len(deduped))]
		arena.Normals = arena.Normals[:srcMesh.VertexOffset+uint32(len(deduped))]
		srcMesh.VertexCount = uint32(len(deduped))
		core.LogInfo("optimize: %s", time.Since(start))
	}

	amath.GeometryGenerateNormals(
		arena.Positions[:srcMesh.VertexOffset+srcMesh.VertexCount],
		arena.Normals[:srcMesh.VertexOffset+srcMesh.VertexCount],
		arena.Indices[srcMesh.IndexOffset:srcMesh.IndexOffset+srcMesh.IndexCount],
	)

	box := amath.NewAABBFromPoint(arena.Positions[srcMesh.VertexOffset])
	for i := srcMesh.VertexOffset + 1; i < srcMesh.VertexOffset+srcMesh.VertexCount; i++ {
		box = box.Grow(arena.Positions[i])
	}
	extent := box.Max.Sub(box.Min)
	modelSize := maxf3(extent.X, extent.Y, extent.Z)

	levels := cfg.Levels
	if *maxLevel == 0 {
		levels = autoLevels(srcMesh.IndexCount)
		core.LogInfo("auto-selected %d octree levels from triangle count", levels)
	}
	step := modelSize / float32(int(1)<<uint(levels-1))

	grid, err := lod.NewMeshGrid(box.Min, step, levels, cfg.ErrTol)
	if err != nil {
		core.LogFatal("building grid: %s", err.Error())
	}

	start = time.Now()
	stats, err := grid.BuildFromMesh(arena, srcMesh, cfg.WorkerCount)
	if err != nil {
		core.LogFatal("build_from_mesh: %s", err.Error())
	}
	core.LogInfo("build_from_mesh: %s (build id %s)", time.Since(start), stats.BuildID)

	for level, count := range stats.CellCountPerLevel {
		core.LogInfo("level %d: %d cells, %d triangles, %d vertices", level, count, grid.TriangleCountAt(level), grid.VertexCountAt(level))
	}
	core.LogInfo("mean relative error: %f", stats.MeanRelativeError)
}

func autoLevels(indexCount uint32) int {
	const targetCellIdxCount = 1 << 16
	level := 0
	for (uint64(1)<<(2*uint(level)+2))*targetCellIdxCount < uint64(indexCount) {
		level++
		if level == 15 {
			break
		}
	}
	return level + 1
}

func maxf3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
