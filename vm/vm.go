package vm

import "fmt"

// ---------------------------------------------------------------------------
// VM: The Ingot virtual machine
// ---------------------------------------------------------------------------

// Config carries the resource limits for a VM instance.
type Config struct {
	// StackCapacity is the operand stack size in words.
	// Zero selects DefaultStackCapacity.
	StackCapacity int

	// HeapCells is the maximum number of live heap cells.
	// Zero selects DefaultHeapCells.
	HeapCells int
}

// VM is a single Ingot virtual machine instance: a bounded operand stack,
// a heap cell arena, and an instruction pointer. The stack and heap are
// unsynchronized state owned exclusively by the instance; a VM must not be
// shared between goroutines, but independent instances may run
// concurrently.
type VM struct {
	stack *Stack
	heap  *Heap

	ip     int
	halted bool
	jumped bool // set by jump instructions so Run skips the advance
}

// New creates a VM with default limits.
func New() *VM {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a VM with the given limits.
func NewWithConfig(cfg Config) *VM {
	return &VM{
		stack: NewStack(cfg.StackCapacity),
		heap:  NewHeap(cfg.HeapCells),
	}
}

// Close releases every heap cell still reachable from the live stack and
// empties the stack. The instance remains usable afterwards.
func (vm *VM) Close() {
	vm.reset()
}

// reset returns the VM to its initial state: the stack is drained (freeing
// any heap-boxed words exactly once) and the instruction pointer cleared.
func (vm *VM) reset() {
	for {
		w, err := vm.stack.Pop()
		if err != nil {
			break
		}
		vm.heap.Release(w)
	}
	vm.ip = 0
	vm.halted = false
	vm.jumped = false
}

// Depth returns the current operand stack depth.
func (vm *VM) Depth() int {
	return vm.stack.Depth()
}

// StackWords returns a copy of the raw stack contents, bottom first.
// Intended for tests and diagnostics.
func (vm *VM) StackWords() []Word {
	return vm.stack.Words()
}

// LiveCells returns the number of live heap cells. Intended for tests and
// diagnostics.
func (vm *VM) LiveCells() int {
	return vm.heap.Live()
}

// ---------------------------------------------------------------------------
// Typed accessors
// ---------------------------------------------------------------------------

// PushInt pushes an integer, taking the immediate path when the value fits
// and boxing it otherwise. Capacity is checked before any allocation so an
// overflow never allocates and discards a cell.
func (vm *VM) PushInt(v uint64) error {
	if vm.stack.Full() {
		return ErrStackOverflow
	}
	if v <= MaxImmediateInt {
		return vm.stack.Push(MakeImmediate(TagInteger, v))
	}
	w, err := vm.heap.AllocInteger(v)
	if err != nil {
		return err
	}
	return vm.stack.Push(w)
}

// PushString pushes a string, always boxing a private copy of the bytes.
func (vm *VM) PushString(s string) error {
	if vm.stack.Full() {
		return ErrStackOverflow
	}
	w, err := vm.heap.AllocString([]byte(s))
	if err != nil {
		return err
	}
	return vm.stack.Push(w)
}

// PushBool pushes a boolean (always immediate).
func (vm *VM) PushBool(b bool) error {
	if vm.stack.Full() {
		return ErrStackOverflow
	}
	return vm.stack.Push(MakeBool(b))
}

// PopInt pops the top word as an integer. Boxed cells are freed once the
// value has been read out. On a tag mismatch the popped word is not
// restored; any cell it referenced is freed before the error returns, so
// a failed pop never leaks.
func (vm *VM) PopInt() (uint64, error) {
	w, err := vm.stack.Pop()
	if err != nil {
		return 0, err
	}
	if w.Tag() != TagInteger {
		vm.heap.Release(w)
		return 0, fmt.Errorf("expected integer, got %s: %w", w.Tag(), ErrTypeMismatch)
	}
	if w.IsImmediate() {
		return w.Immediate(), nil
	}
	v := vm.heap.IntegerAt(w)
	vm.heap.Free(w)
	return v, nil
}

// PopString pops the top word as a string, freeing the backing cell after
// copying the bytes out. Mismatch handling is as in PopInt.
func (vm *VM) PopString() (string, error) {
	w, err := vm.stack.Pop()
	if err != nil {
		return "", err
	}
	if w.Tag() != TagString {
		vm.heap.Release(w)
		return "", fmt.Errorf("expected string, got %s: %w", w.Tag(), ErrTypeMismatch)
	}
	s := string(vm.heap.StringAt(w))
	vm.heap.Free(w)
	return s, nil
}

// PopBool pops the top word as a boolean. Mismatch handling is as in
// PopInt.
func (vm *VM) PopBool() (bool, error) {
	w, err := vm.stack.Pop()
	if err != nil {
		return false, err
	}
	if w.Tag() != TagBoolean {
		vm.heap.Release(w)
		return false, fmt.Errorf("expected boolean, got %s: %w", w.Tag(), ErrTypeMismatch)
	}
	return w.Immediate() != 0, nil
}
