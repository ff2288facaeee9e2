package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxStringPreview is the longest string rendered in full by DumpStack;
// longer strings are truncated with an ellipsis.
const MaxStringPreview = 32

// DumpStack renders the live operand stack for diagnostics, top first.
// One line per slot: slot index, decoded value, and the heap handle for
// boxed payloads. Debug aid only; not part of the execution contract.
func (vm *VM) DumpStack() string {
	words := vm.stack.Words()
	if len(words) == 0 {
		return "<empty stack>"
	}
	var sb strings.Builder
	for i := len(words) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%4d  %s\n", i, vm.describeWord(words[i]))
	}
	return sb.String()
}

func (vm *VM) describeWord(w Word) string {
	switch w.Tag() {
	case TagInteger:
		if w.IsImmediate() {
			return fmt.Sprintf("integer %d", w.Immediate())
		}
		return fmt.Sprintf("integer %d (boxed @%d)", vm.heap.IntegerAt(w), w.HeapHandle())
	case TagBoolean:
		return fmt.Sprintf("boolean %t", w.Immediate() != 0)
	case TagString:
		s := string(vm.heap.StringAt(w))
		if len(s) > MaxStringPreview {
			s = s[:MaxStringPreview] + "..."
		}
		return fmt.Sprintf("string %s (boxed @%d, %d bytes)",
			strconv.Quote(s), w.HeapHandle(), len(vm.heap.StringAt(w)))
	default:
		return fmt.Sprintf("invalid word %#016x", uint64(w))
	}
}
