package lod

// CellTable is an open-addressed hash map from CellCoord to an index into
// the grid's parallel per-cell arrays. It gives O(1) coordinate lookups
// during build (parent -> children) and selection (ancestor tests).
type CellTable struct {
	keys   []CellCoord
	values []uint32
	count  int
}

const cellTableMaxLoad = 0.75

// NewCellTable returns an empty table sized for at least capacityHint
// entries before it grows.
func NewCellTable(capacityHint int) *CellTable {
	size := 16
	for size < capacityHint*2 {
		size *= 2
	}
	t := &CellTable{
		keys:   make([]CellCoord, size),
		values: make([]uint32, size),
	}
	for i := range t.keys {
		t.keys[i] = EmptyCellCoord
	}
	return t
}

// mix64 is the MurmurHash3 64-bit finalizer (fmix64). It avoids the clustering
// a naive hash would produce on keys that differ only in the lod field
// (which occupies a single contiguous byte range of the packed key).
func mix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

func (t *CellTable) slot(coord CellCoord) int {
	mask := uint64(len(t.keys) - 1)
	i := mix64(coord.Key()) & mask
	for {
		if t.keys[i] == EmptyCellCoord || t.keys[i] == coord {
			return int(i)
		}
		i = (i + 1) & mask
	}
}

// Insert records idx under coord, overwriting any previous value for the
// same coordinate. Grows the table if the load factor would exceed 0.75.
func (t *CellTable) Insert(coord CellCoord, idx uint32) {
	if float64(t.count+1) > cellTableMaxLoad*float64(len(t.keys)) {
		t.grow()
	}
	i := t.slot(coord)
	if t.keys[i] == EmptyCellCoord {
		t.count++
	}
	t.keys[i] = coord
	t.values[i] = idx
}

// Lookup returns the index stored for coord, if any.
func (t *CellTable) Lookup(coord CellCoord) (uint32, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	i := t.slot(coord)
	if t.keys[i] == EmptyCellCoord {
		return 0, false
	}
	return t.values[i], true
}

// Contains reports whether coord has an entry.
func (t *CellTable) Contains(coord CellCoord) bool {
	_, ok := t.Lookup(coord)
	return ok
}

// Len returns the number of occupied slots.
func (t *CellTable) Len() int {
	return t.count
}

func (t *CellTable) grow() {
	old := *t
	newSize := len(t.keys) * 2
	if newSize == 0 {
		newSize = 16
	}
	t.keys = make([]CellCoord, newSize)
	t.values = make([]uint32, newSize)
	for i := range t.keys {
		t.keys[i] = EmptyCellCoord
	}
	t.count = 0
	for i, k := range old.keys {
		if k != EmptyCellCoord {
			t.Insert(k, old.values[i])
		}
	}
}
