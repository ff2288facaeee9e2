package vm

import (
	"errors"
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Typed accessor round trips
// ---------------------------------------------------------------------------

func TestPushPopIntImmediate(t *testing.T) {
	vm := New()
	defer vm.Close()

	tests := []uint64{0, 1, 42, 1000000, MaxImmediateInt}
	for _, v := range tests {
		if err := vm.PushInt(v); err != nil {
			t.Fatalf("PushInt(%d): %v", v, err)
		}
		if vm.LiveCells() != 0 {
			t.Errorf("PushInt(%d) allocated a heap cell for an immediate", v)
		}
		got, err := vm.PopInt()
		if err != nil {
			t.Fatalf("PopInt after PushInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip = %d, want %d", got, v)
		}
	}
}

func TestPushPopIntBoxed(t *testing.T) {
	vm := New()
	defer vm.Close()

	tests := []uint64{MaxImmediateInt + 1, 1 << 60, math.MaxUint64}
	for _, v := range tests {
		if err := vm.PushInt(v); err != nil {
			t.Fatalf("PushInt(%d): %v", v, err)
		}
		if vm.LiveCells() != 1 {
			t.Errorf("PushInt(%d): LiveCells = %d, want 1 (boxed)", v, vm.LiveCells())
		}
		got, err := vm.PopInt()
		if err != nil {
			t.Fatalf("PopInt after PushInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip = %d, want %d", got, v)
		}
		if vm.LiveCells() != 0 {
			t.Errorf("PopInt(%d) leaked: LiveCells = %d, want 0", v, vm.LiveCells())
		}
	}
}

func TestPushPopString(t *testing.T) {
	vm := New()
	defer vm.Close()

	tests := []string{"", "a", "Hello, World!", "with\x00nul"}
	for _, s := range tests {
		if err := vm.PushString(s); err != nil {
			t.Fatalf("PushString(%q): %v", s, err)
		}
		got, err := vm.PopString()
		if err != nil {
			t.Fatalf("PopString after PushString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip = %q, want %q", got, s)
		}
		if vm.LiveCells() != 0 {
			t.Errorf("PopString(%q) leaked: LiveCells = %d, want 0", s, vm.LiveCells())
		}
	}
}

func TestPushPopBool(t *testing.T) {
	vm := New()
	defer vm.Close()

	for _, b := range []bool{true, false} {
		if err := vm.PushBool(b); err != nil {
			t.Fatalf("PushBool(%t): %v", b, err)
		}
		if vm.LiveCells() != 0 {
			t.Error("PushBool allocated a heap cell")
		}
		got, err := vm.PopBool()
		if err != nil {
			t.Fatalf("PopBool: %v", err)
		}
		if got != b {
			t.Errorf("round trip = %t, want %t", got, b)
		}
	}
}

// ---------------------------------------------------------------------------
// Type mismatch policy
// ---------------------------------------------------------------------------

// A mismatched typed pop does not restore the word, and frees any heap
// cell it referenced before returning the error.
func TestPopTypeMismatchFreesCell(t *testing.T) {
	vm := New()
	defer vm.Close()

	if err := vm.PushString("not an int"); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.PopInt(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("PopInt on string = %v, want ErrTypeMismatch", err)
	}
	if vm.Depth() != 0 {
		t.Errorf("Depth after mismatch = %d, want 0 (word not restored)", vm.Depth())
	}
	if vm.LiveCells() != 0 {
		t.Errorf("LiveCells after mismatch = %d, want 0 (cell freed)", vm.LiveCells())
	}
}

func TestPopTypeMismatchImmediate(t *testing.T) {
	vm := New()
	defer vm.Close()

	if err := vm.PushInt(5); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.PopBool(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("PopBool on integer = %v, want ErrTypeMismatch", err)
	}
	if _, err := vm.PopString(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("pop after consuming mismatch = %v, want ErrStackUnderflow", err)
	}
}

// ---------------------------------------------------------------------------
// Capacity checks precede allocation
// ---------------------------------------------------------------------------

func TestPushChecksCapacityBeforeAlloc(t *testing.T) {
	vm := NewWithConfig(Config{StackCapacity: 1})
	defer vm.Close()

	if err := vm.PushBool(true); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushString("discarded"); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("PushString at capacity = %v, want ErrStackOverflow", err)
	}
	if vm.LiveCells() != 0 {
		t.Errorf("overflowing push allocated a cell: LiveCells = %d", vm.LiveCells())
	}
	if err := vm.PushInt(1 << 60); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("PushInt at capacity = %v, want ErrStackOverflow", err)
	}
	if vm.LiveCells() != 0 {
		t.Errorf("overflowing boxed PushInt allocated a cell: LiveCells = %d", vm.LiveCells())
	}
}

// ---------------------------------------------------------------------------
// Teardown
// ---------------------------------------------------------------------------

func TestCloseReleasesLiveCells(t *testing.T) {
	vm := New()

	if err := vm.PushString("one"); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushInt(1 << 60); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushInt(7); err != nil {
		t.Fatal(err)
	}
	if vm.LiveCells() != 2 {
		t.Fatalf("LiveCells = %d, want 2", vm.LiveCells())
	}

	vm.Close()
	if vm.Depth() != 0 {
		t.Errorf("Depth after Close = %d, want 0", vm.Depth())
	}
	if vm.LiveCells() != 0 {
		t.Errorf("LiveCells after Close = %d, want 0", vm.LiveCells())
	}
}

func TestOutOfMemorySurfaced(t *testing.T) {
	vm := NewWithConfig(Config{HeapCells: 1})
	defer vm.Close()

	if err := vm.PushString("fits"); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushString("does not"); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("PushString past heap limit = %v, want ErrOutOfMemory", err)
	}
}
