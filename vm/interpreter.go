package vm

import (
	"fmt"
	"math/bits"
)

// ---------------------------------------------------------------------------
// Interpreter: instruction semantics and the run loop
// ---------------------------------------------------------------------------

// Binary operand order: the operand pushed first is the left-hand operand
// a; the operand pushed second, and thus popped first, is b. Every binary
// instruction evaluates a <op> b with a the earlier-pushed value. This
// ordering is load-bearing for sub, div, concat, and the ordered
// comparisons.

// Exec executes exactly one instruction against the current stack and
// instruction pointer and returns the first error encountered. Partial
// side effects before an error (an operand already popped, say) are not
// rolled back; compound instructions are not transactional.
func (vm *VM) Exec(ins Instruction) error {
	switch ins.Op {
	case OpAdd:
		a, b, err := vm.popIntPair()
		if err != nil {
			return err
		}
		sum, carry := bits.Add64(a, b, 0)
		if carry != 0 {
			return ErrIntegerOverflow
		}
		return vm.PushInt(sum)

	case OpSub:
		a, b, err := vm.popIntPair()
		if err != nil {
			return err
		}
		diff, borrow := bits.Sub64(a, b, 0)
		if borrow != 0 {
			return ErrIntegerOverflow
		}
		return vm.PushInt(diff)

	case OpMul:
		a, b, err := vm.popIntPair()
		if err != nil {
			return err
		}
		hi, lo := bits.Mul64(a, b)
		if hi != 0 {
			return ErrIntegerOverflow
		}
		return vm.PushInt(lo)

	case OpDiv:
		a, b, err := vm.popIntPair()
		if err != nil {
			return err
		}
		// Checked before the divide; a/b itself cannot overflow.
		if b == 0 {
			return ErrDivByZero
		}
		return vm.PushInt(a / b)

	case OpIComp:
		a, b, err := vm.popIntPair()
		if err != nil {
			return err
		}
		return vm.PushBool(compare(a, b, ins.Cmp))

	case OpStrEq:
		b, err := vm.PopString()
		if err != nil {
			return err
		}
		a, err := vm.PopString()
		if err != nil {
			return err
		}
		return vm.PushBool(a == b)

	case OpConcat:
		b, err := vm.PopString()
		if err != nil {
			return err
		}
		a, err := vm.PopString()
		if err != nil {
			return err
		}
		return vm.PushString(a + b)

	case OpOr:
		a, b, err := vm.popBoolPair()
		if err != nil {
			return err
		}
		return vm.PushBool(a || b)

	case OpAnd:
		a, b, err := vm.popBoolPair()
		if err != nil {
			return err
		}
		return vm.PushBool(a && b)

	case OpNot:
		v, err := vm.PopBool()
		if err != nil {
			return err
		}
		return vm.PushBool(!v)

	case OpDup:
		top, err := vm.stack.Top()
		if err != nil {
			return err
		}
		if vm.stack.Full() {
			return ErrStackOverflow
		}
		dup, err := vm.heap.Clone(top)
		if err != nil {
			return err
		}
		return vm.stack.Push(dup)

	case OpDrop:
		w, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.heap.Release(w)
		return nil

	case OpPushInt:
		return vm.PushInt(ins.Int)

	case OpPushString:
		return vm.PushString(ins.Str)

	case OpPushBool:
		return vm.PushBool(ins.Bool)

	case OpHalt:
		vm.halted = true
		return nil

	case OpJmp:
		vm.ip = ins.Target
		vm.jumped = true
		return nil

	case OpCondJmp:
		cond, err := vm.PopBool()
		if err != nil {
			return err
		}
		if cond {
			vm.ip = ins.Target
			vm.jumped = true
		}
		return nil

	default:
		panic(fmt.Sprintf("vm: Exec: unknown opcode 0x%02x", byte(ins.Op)))
	}
}

// Run resets the stack and instruction pointer, then repeatedly executes
// the instruction at the current pointer. Halt returns nil immediately,
// leaving the stack as-is. Running off either end of the sequence without
// halting fails with ErrProgramOverflow. Any instruction error aborts the
// run and propagates wrapped with the failing index; the stack keeps
// whatever partial state existed at the failure, and the instance stays
// reusable for a subsequent Run.
func (vm *VM) Run(prog []Instruction) error {
	vm.reset()
	for {
		if vm.ip < 0 || vm.ip >= len(prog) {
			return fmt.Errorf("no halt before end of program: %w", ErrProgramOverflow)
		}
		ins := prog[vm.ip]
		vm.jumped = false
		if err := vm.Exec(ins); err != nil {
			return fmt.Errorf("instruction %d (%s): %w", vm.ip, ins.Op, err)
		}
		if vm.halted {
			return nil
		}
		if !vm.jumped {
			vm.ip++
		}
	}
}

// popIntPair pops the two integer operands of a binary instruction,
// returning them as (a, b) with a the earlier-pushed left operand.
func (vm *VM) popIntPair() (a, b uint64, err error) {
	b, err = vm.PopInt()
	if err != nil {
		return 0, 0, err
	}
	a, err = vm.PopInt()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// popBoolPair pops the two boolean operands of a binary instruction.
func (vm *VM) popBoolPair() (a, b bool, err error) {
	b, err = vm.PopBool()
	if err != nil {
		return false, false, err
	}
	a, err = vm.PopBool()
	if err != nil {
		return false, false, err
	}
	return a, b, nil
}

func compare(a, b uint64, c Comparison) bool {
	switch c {
	case CmpEq:
		return a == b
	case CmpNe:
		return a != b
	case CmpLt:
		return a < b
	case CmpGt:
		return a > b
	case CmpLte:
		return a <= b
	case CmpGte:
		return a >= b
	default:
		panic(fmt.Sprintf("vm: compare: unknown comparison %d", byte(c)))
	}
}
