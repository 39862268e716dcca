package containers

// FrameBuffers holds the two parallel output arrays produced by a
// selection pass (to_draw / parents, see engine/lod.Selector.Select).
// Selection runs once per frame on the render thread; re-allocating these
// slices every call would be wasteful, so FrameBuffers keeps its backing
// arrays across calls and only grows them, mirroring the fixed-capacity,
// reused-storage design of a ring buffer without the circular indexing a
// queue needs (a frame's cut is written once and read once, not streamed).
type FrameBuffers struct {
	ToDraw  []uint32
	Parents []uint32
}

// NewFrameBuffers returns a FrameBuffers with hinted initial capacity.
func NewFrameBuffers(capacityHint int) *FrameBuffers {
	return &FrameBuffers{
		ToDraw:  make([]uint32, 0, capacityHint),
		Parents: make([]uint32, 0, capacityHint),
	}
}

// Reset truncates both arrays to length 0 without releasing capacity, so
// the next Select call can reuse the backing storage.
func (fb *FrameBuffers) Reset() {
	fb.ToDraw = fb.ToDraw[:0]
	fb.Parents = fb.Parents[:0]
}

// Append records one cell of the cut: cellIdx is drawn, parentIdx supplies
// the parent vertex stream (equal to cellIdx when no parent blending applies).
func (fb *FrameBuffers) Append(cellIdx, parentIdx uint32) {
	fb.ToDraw = append(fb.ToDraw, cellIdx)
	fb.Parents = append(fb.Parents, parentIdx)
}

// Len reports how many cells are currently recorded.
func (fb *FrameBuffers) Len() int {
	return len(fb.ToDraw)
}
