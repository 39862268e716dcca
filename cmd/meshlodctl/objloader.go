package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lodforge/meshgrid/engine/lod"
	amath "github.com/lodforge/meshgrid/engine/math"
)

// loadOBJ reads a Wavefront OBJ file's vertex positions and triangulated
// face indices into arena, appending a SourceMesh descriptor naming the
// range it occupies.
//
// This is deliberately a minimal reader: it understands "v" and "f"
// lines only, triangulates polygonal faces by fan, and ignores texture
// coordinates, normals, materials, and groups. A full parser is outside
// the scope of the mesh pipeline this tool exercises.
func loadOBJ(path string, arena *lod.MBuf) (lod.SourceMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return lod.SourceMesh{}, err
	}
	defer f.Close()

	var positions []amath.Vec3
	var indices []uint32

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return lod.SourceMesh{}, fmt.Errorf("objloader: line %d: malformed vertex", lineNo)
			}
			x, err1 := strconv.ParseFloat(fields[1], 32)
			y, err2 := strconv.ParseFloat(fields[2], 32)
			z, err3 := strconv.ParseFloat(fields[3], 32)
			if err1 != nil || err2 != nil || err3 != nil {
				return lod.SourceMesh{}, fmt.Errorf("objloader: line %d: malformed vertex", lineNo)
			}
			positions = append(positions, amath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})
		case "f":
			if len(fields) < 4 {
				return lod.SourceMesh{}, fmt.Errorf("objloader: line %d: face needs >= 3 vertices", lineNo)
			}
			faceIdx := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idxStr := strings.SplitN(tok, "/", 2)[0]
				idx, err := strconv.Atoi(idxStr)
				if err != nil {
					return lod.SourceMesh{}, fmt.Errorf("objloader: line %d: malformed face index", lineNo)
				}
				if idx < 0 {
					idx = len(positions) + idx + 1
				}
				faceIdx = append(faceIdx, uint32(idx-1))
			}
			for i := 1; i < len(faceIdx)-1; i++ {
				indices = append(indices, faceIdx[0], faceIdx[i], faceIdx[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return lod.SourceMesh{}, err
	}

	vtxOffset := arena.AppendVertices(positions, nil, nil, nil)
	idxOffset := arena.AppendIndices(indices)

	return lod.SourceMesh{
		IndexOffset:  idxOffset,
		IndexCount:   uint32(len(indices)),
		VertexOffset: vtxOffset,
		VertexCount:  uint32(len(positions)),
	}, nil
}
