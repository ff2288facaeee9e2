package vm

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies an instruction variant.
type Opcode byte

// Stack manipulation
const (
	OpDup  Opcode = 0x01 // duplicate top of stack (deep copy of boxed payloads)
	OpDrop Opcode = 0x02 // discard top of stack, releasing boxed payloads
)

// Literal pushes
const (
	OpPushInt    Opcode = 0x10 // push integer constant
	OpPushString Opcode = 0x11 // push string literal
	OpPushBool   Opcode = 0x12 // push boolean literal
)

// Integer arithmetic
const (
	OpAdd Opcode = 0x20 // checked a + b
	OpSub Opcode = 0x21 // checked a - b
	OpMul Opcode = 0x22 // checked a * b
	OpDiv Opcode = 0x23 // a / b, checked for zero divisor
)

// Comparison and logic
const (
	OpIComp Opcode = 0x30 // integer comparison, result pushed as boolean
	OpStrEq Opcode = 0x31 // byte-exact string equality
	OpOr    Opcode = 0x32 // logical or
	OpAnd   Opcode = 0x33 // logical and
	OpNot   Opcode = 0x34 // logical negation
)

// Strings
const (
	OpConcat Opcode = 0x40 // string concatenation a ++ b
)

// Control flow
const (
	OpHalt    Opcode = 0x50 // terminate the run loop successfully
	OpJmp     Opcode = 0x51 // set the instruction pointer to the target
	OpCondJmp Opcode = 0x52 // pop boolean, jump when true
)

// Comparison selects the relation evaluated by OpIComp.
type Comparison byte

const (
	CmpEq Comparison = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLte
	CmpGte
)

// String returns the comparison mnemonic.
func (c Comparison) String() string {
	switch c {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpLt:
		return "lt"
	case CmpGt:
		return "gt"
	case CmpLte:
		return "lte"
	case CmpGte:
		return "gte"
	default:
		return fmt.Sprintf("cmp(%d)", byte(c))
	}
}

// ComparisonByName returns the Comparison for a mnemonic.
func ComparisonByName(name string) (Comparison, bool) {
	switch name {
	case "eq":
		return CmpEq, true
	case "ne":
		return CmpNe, true
	case "lt":
		return CmpLt, true
	case "gt":
		return CmpGt, true
	case "lte":
		return CmpLte, true
	case "gte":
		return CmpGte, true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name   string // assembler mnemonic
	Pops   int    // words consumed from the stack
	Pushes int    // words produced onto the stack
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpDup:  {"dup", 1, 2},
	OpDrop: {"drop", 1, 0},

	OpPushInt:    {"push_int", 0, 1},
	OpPushString: {"push_string", 0, 1},
	OpPushBool:   {"push_boolean", 0, 1},

	OpAdd: {"add", 2, 1},
	OpSub: {"sub", 2, 1},
	OpMul: {"mul", 2, 1},
	OpDiv: {"div", 2, 1},

	OpIComp: {"i_comp", 2, 1},
	OpStrEq: {"str_eq", 2, 1},
	OpOr:    {"or", 2, 1},
	OpAnd:   {"and", 2, 1},
	OpNot:   {"not", 1, 1},

	OpConcat: {"concat", 2, 1},

	OpHalt:    {"halt", 0, 0},
	OpJmp:     {"jmp", 0, 0},
	OpCondJmp: {"cond_jmp", 1, 0},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("unknown_%02x", byte(op))}
}

// Valid reports whether op is a catalogued opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// String returns the assembler mnemonic.
func (op Opcode) String() string {
	return op.Info().Name
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Instruction is one element of a program: an opcode plus at most one
// operand. Instructions are immutable once constructed; a program is an
// ordered []Instruction addressed by 0-based index.
type Instruction struct {
	Op     Opcode
	Int    uint64     // operand of OpPushInt
	Str    string     // operand of OpPushString
	Bool   bool       // operand of OpPushBool
	Target int        // operand of OpJmp / OpCondJmp (instruction index)
	Cmp    Comparison // operand of OpIComp
}

// String renders the instruction in assembler syntax.
func (ins Instruction) String() string {
	switch ins.Op {
	case OpPushInt:
		return fmt.Sprintf("%s %d", ins.Op, ins.Int)
	case OpPushString:
		return fmt.Sprintf("%s %s", ins.Op, strconv.Quote(ins.Str))
	case OpPushBool:
		return fmt.Sprintf("%s %t", ins.Op, ins.Bool)
	case OpIComp:
		return fmt.Sprintf("%s %s", ins.Op, ins.Cmp)
	case OpJmp, OpCondJmp:
		return fmt.Sprintf("%s %d", ins.Op, ins.Target)
	default:
		return ins.Op.String()
	}
}

// Instruction constructors, one per catalogue entry.

func Dup() Instruction  { return Instruction{Op: OpDup} }
func Drop() Instruction { return Instruction{Op: OpDrop} }

func PushInt(v uint64) Instruction    { return Instruction{Op: OpPushInt, Int: v} }
func PushString(s string) Instruction { return Instruction{Op: OpPushString, Str: s} }
func PushBool(b bool) Instruction     { return Instruction{Op: OpPushBool, Bool: b} }

func Add() Instruction { return Instruction{Op: OpAdd} }
func Sub() Instruction { return Instruction{Op: OpSub} }
func Mul() Instruction { return Instruction{Op: OpMul} }
func Div() Instruction { return Instruction{Op: OpDiv} }

func IComp(c Comparison) Instruction { return Instruction{Op: OpIComp, Cmp: c} }
func StrEq() Instruction             { return Instruction{Op: OpStrEq} }
func Or() Instruction                { return Instruction{Op: OpOr} }
func And() Instruction               { return Instruction{Op: OpAnd} }
func Not() Instruction               { return Instruction{Op: OpNot} }

func Concat() Instruction { return Instruction{Op: OpConcat} }

func Halt() Instruction              { return Instruction{Op: OpHalt} }
func Jmp(target int) Instruction     { return Instruction{Op: OpJmp, Target: target} }
func CondJmp(target int) Instruction { return Instruction{Op: OpCondJmp, Target: target} }
