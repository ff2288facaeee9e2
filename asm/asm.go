// Package asm implements a line-oriented assembler for the Ingot
// instruction set.
//
// Syntax: one instruction per line, using the catalogue mnemonics. Blank
// lines and everything after a '#' are ignored. A line of the form
// "name:" defines a label at the next instruction index; jump targets may
// be labels or bare instruction indexes. String literals use Go quoting.
//
//	        push_int 10       # counter
//	loop:   dup
//	        push_int 0
//	        i_comp gt
//	        cond_jmp body
//	        halt
//	body:   push_int 1
//	        sub
//	        jmp loop
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ingotvm/ingot/vm"
)

// mnemonics maps assembler names to opcodes. Names match vm.Opcode.String.
var mnemonics = map[string]vm.Opcode{
	"dup":  vm.OpDup,
	"drop": vm.OpDrop,

	"push_int":     vm.OpPushInt,
	"push_string":  vm.OpPushString,
	"push_boolean": vm.OpPushBool,

	"add": vm.OpAdd,
	"sub": vm.OpSub,
	"mul": vm.OpMul,
	"div": vm.OpDiv,

	"i_comp": vm.OpIComp,
	"str_eq": vm.OpStrEq,
	"or":     vm.OpOr,
	"and":    vm.OpAnd,
	"not":    vm.OpNot,

	"concat": vm.OpConcat,

	"halt":     vm.OpHalt,
	"jmp":      vm.OpJmp,
	"cond_jmp": vm.OpCondJmp,
}

// statement is one significant source line after stripping comments and
// labels.
type statement struct {
	line     int    // 1-based source line
	mnemonic string
	operand  string // raw operand text, may be empty
}

// Assemble translates source text into an instruction sequence.
func Assemble(src string) ([]vm.Instruction, error) {
	stmts, labels, err := scan(src)
	if err != nil {
		return nil, err
	}

	prog := make([]vm.Instruction, 0, len(stmts))
	for i, st := range stmts {
		ins, err := parseStatement(st, i, labels)
		if err != nil {
			return nil, err
		}
		prog = append(prog, ins)
	}
	return prog, nil
}

// scan splits source into statements and resolves label definitions to
// instruction indexes.
func scan(src string) ([]statement, map[string]int, error) {
	var stmts []statement
	labels := make(map[string]int)

	for lineNo, raw := range strings.Split(src, "\n") {
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Leading label definitions, possibly followed by an instruction
		// on the same line.
		for {
			i := strings.IndexByte(line, ':')
			if i < 0 {
				break
			}
			name := strings.TrimSpace(line[:i])
			if name == "" || strings.ContainsAny(name, " \t\"") {
				break
			}
			if _, dup := labels[name]; dup {
				return nil, nil, fmt.Errorf("line %d: duplicate label %q", lineNo+1, name)
			}
			labels[name] = len(stmts)
			line = strings.TrimSpace(line[i+1:])
			if line == "" {
				break
			}
		}
		if line == "" {
			continue
		}

		mnemonic, operand, _ := strings.Cut(line, " ")
		stmts = append(stmts, statement{
			line:     lineNo + 1,
			mnemonic: mnemonic,
			operand:  strings.TrimSpace(operand),
		})
	}
	return stmts, labels, nil
}

func parseStatement(st statement, index int, labels map[string]int) (vm.Instruction, error) {
	op, ok := mnemonics[st.mnemonic]
	if !ok {
		return vm.Instruction{}, fmt.Errorf("line %d: unknown mnemonic %q", st.line, st.mnemonic)
	}

	switch op {
	case vm.OpPushInt:
		v, err := strconv.ParseUint(st.operand, 0, 64)
		if err != nil {
			return vm.Instruction{}, fmt.Errorf("line %d: push_int needs an unsigned integer: %v", st.line, err)
		}
		return vm.PushInt(v), nil

	case vm.OpPushString:
		s, err := strconv.Unquote(st.operand)
		if err != nil {
			return vm.Instruction{}, fmt.Errorf("line %d: push_string needs a quoted string: %v", st.line, err)
		}
		return vm.PushString(s), nil

	case vm.OpPushBool:
		switch st.operand {
		case "true":
			return vm.PushBool(true), nil
		case "false":
			return vm.PushBool(false), nil
		default:
			return vm.Instruction{}, fmt.Errorf("line %d: push_boolean needs true or false, got %q", st.line, st.operand)
		}

	case vm.OpIComp:
		cmp, ok := vm.ComparisonByName(st.operand)
		if !ok {
			return vm.Instruction{}, fmt.Errorf("line %d: i_comp needs eq|ne|lt|gt|lte|gte, got %q", st.line, st.operand)
		}
		return vm.IComp(cmp), nil

	case vm.OpJmp, vm.OpCondJmp:
		target, err := resolveTarget(st.operand, labels)
		if err != nil {
			return vm.Instruction{}, fmt.Errorf("line %d: %v", st.line, err)
		}
		return vm.Instruction{Op: op, Target: target}, nil

	default:
		if st.operand != "" {
			return vm.Instruction{}, fmt.Errorf("line %d: %s takes no operand", st.line, st.mnemonic)
		}
		return vm.Instruction{Op: op}, nil
	}
}

func resolveTarget(operand string, labels map[string]int) (int, error) {
	if operand == "" {
		return 0, fmt.Errorf("jump needs a target")
	}
	if target, ok := labels[operand]; ok {
		return target, nil
	}
	target, err := strconv.Atoi(operand)
	if err != nil {
		return 0, fmt.Errorf("undefined label %q", operand)
	}
	return target, nil
}

// Format renders a program back to assembler text, one instruction per
// line with numeric jump targets. Assemble(Format(p)) reproduces p.
func Format(prog []vm.Instruction) string {
	var sb strings.Builder
	for _, ins := range prog {
		sb.WriteString(ins.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
