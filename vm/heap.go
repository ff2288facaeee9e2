package vm

// ---------------------------------------------------------------------------
// Heap: arena of out-of-line cells for boxed values
// ---------------------------------------------------------------------------

// DefaultHeapCells is the default limit on live heap cells.
const DefaultHeapCells = 65536

type cellKind uint8

const (
	cellFree cellKind = iota
	cellInteger
	cellString
)

// cell is one slot of out-of-line storage: either a boxed integer or a
// boxed string with an owned byte buffer.
type cell struct {
	kind  cellKind
	n     uint64
	bytes []byte
}

// Heap allocates and releases cells for values that do not fit the
// immediate payload of a Word. Words reference cells by opaque handle
// (slot index), never by raw pointer; every cell reachable from the live
// operand stack is owned by the heap.
//
// A Heap belongs to a single VM instance and is not safe for concurrent
// use.
type Heap struct {
	cells []cell
	free  []int // recycled slot indexes
	limit int   // max live cells
	live  int
}

// NewHeap creates an empty heap that allows at most limit live cells.
// A non-positive limit selects DefaultHeapCells.
func NewHeap(limit int) *Heap {
	if limit <= 0 {
		limit = DefaultHeapCells
	}
	return &Heap{limit: limit}
}

// alloc reserves a slot and returns its handle, or ErrOutOfMemory when the
// cell limit is reached.
func (h *Heap) alloc() (int, error) {
	if h.live >= h.limit {
		return 0, ErrOutOfMemory
	}
	h.live++
	if n := len(h.free); n > 0 {
		handle := h.free[n-1]
		h.free = h.free[:n-1]
		return handle, nil
	}
	h.cells = append(h.cells, cell{})
	return len(h.cells) - 1, nil
}

// AllocInteger boxes an integer and returns the referencing word. Used
// only for values above MaxImmediateInt; small integers take the
// immediate path and never allocate.
func (h *Heap) AllocInteger(v uint64) (Word, error) {
	handle, err := h.alloc()
	if err != nil {
		return 0, err
	}
	h.cells[handle] = cell{kind: cellInteger, n: v}
	return MakeHeapRef(TagInteger, handle), nil
}

// AllocString boxes a string, copying b into an owned buffer, and returns
// the referencing word. The caller's slice is never aliased.
func (h *Heap) AllocString(b []byte) (Word, error) {
	handle, err := h.alloc()
	if err != nil {
		return 0, err
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	h.cells[handle] = cell{kind: cellString, bytes: buf}
	return MakeHeapRef(TagString, handle), nil
}

// Free releases the cell referenced by a heap word. Freeing a cell twice
// is an internal invariant violation and panics: with deep-copy-on-dup and
// free-on-drop, no two stack slots ever share a cell.
func (h *Heap) Free(w Word) {
	handle := w.HeapHandle()
	if h.cells[handle].kind == cellFree {
		panic("vm: Heap.Free: double free of heap cell")
	}
	h.cells[handle] = cell{}
	h.free = append(h.free, handle)
	h.live--
}

// Release frees the cell behind w if w is heap-boxed, and is a no-op for
// immediates. This is the uniform release path for every instruction that
// removes a word from the stack without reading it.
func (h *Heap) Release(w Word) {
	if !w.IsImmediate() {
		h.Free(w)
	}
}

// Clone returns an independently owned copy of w. Immediates are returned
// as-is; heap-boxed payloads are deep-copied into a fresh cell so that
// each stack slot owns exactly one cell.
func (h *Heap) Clone(w Word) (Word, error) {
	if w.IsImmediate() {
		return w, nil
	}
	c := h.cellAt(w)
	switch c.kind {
	case cellInteger:
		return h.AllocInteger(c.n)
	case cellString:
		return h.AllocString(c.bytes)
	default:
		panic("vm: Heap.Clone: reference to freed cell")
	}
}

// IntegerAt returns the boxed integer referenced by w.
// Panics if w does not reference a live integer cell.
func (h *Heap) IntegerAt(w Word) uint64 {
	c := h.cellAt(w)
	if c.kind != cellInteger {
		panic("vm: Heap.IntegerAt: not an integer cell")
	}
	return c.n
}

// StringAt returns the owned byte buffer of the string cell referenced by
// w. The buffer remains owned by the heap; callers must copy it out before
// freeing the cell.
func (h *Heap) StringAt(w Word) []byte {
	c := h.cellAt(w)
	if c.kind != cellString {
		panic("vm: Heap.StringAt: not a string cell")
	}
	return c.bytes
}

func (h *Heap) cellAt(w Word) *cell {
	return &h.cells[w.HeapHandle()]
}

// Live returns the number of live cells. Every value boxed by a running
// program should be matched by exactly one free, so Live is the leak
// detector used throughout the tests.
func (h *Heap) Live() int {
	return h.live
}
