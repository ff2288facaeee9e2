// Package wire implements the CBOR serialization of Ingot programs.
// Programs are encoded canonically so the same instruction sequence always
// produces the same bytes, which keeps stored blobs comparable.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ingotvm/ingot/vm"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Program is the serialized form of a named instruction sequence.
type Program struct {
	Name         string        `cbor:"1,keyasint,omitempty"`
	Instructions []Instruction `cbor:"2,keyasint"`
}

// Instruction is the serialized form of vm.Instruction. Operand fields are
// omitted when zero, so most instructions encode as a single small map.
type Instruction struct {
	Op     uint8  `cbor:"1,keyasint"`
	Int    uint64 `cbor:"2,keyasint,omitempty"`
	Str    string `cbor:"3,keyasint,omitempty"`
	Bool   bool   `cbor:"4,keyasint,omitempty"`
	Target int    `cbor:"5,keyasint,omitempty"`
	Cmp    uint8  `cbor:"6,keyasint,omitempty"`
}

// MarshalProgram serializes a named program to CBOR bytes.
func MarshalProgram(name string, prog []vm.Instruction) ([]byte, error) {
	p := Program{Name: name, Instructions: make([]Instruction, len(prog))}
	for i, ins := range prog {
		p.Instructions[i] = Instruction{
			Op:     uint8(ins.Op),
			Int:    ins.Int,
			Str:    ins.Str,
			Bool:   ins.Bool,
			Target: ins.Target,
			Cmp:    uint8(ins.Cmp),
		}
	}
	return cborEncMode.Marshal(&p)
}

// UnmarshalProgram deserializes CBOR bytes into a named program. Every
// decoded opcode must be part of the instruction catalogue; anything else
// is rejected so a loaded program never carries instructions the
// interpreter would refuse.
func UnmarshalProgram(data []byte) (string, []vm.Instruction, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return "", nil, fmt.Errorf("wire: unmarshal program: %w", err)
	}
	prog := make([]vm.Instruction, len(p.Instructions))
	for i, ins := range p.Instructions {
		op := vm.Opcode(ins.Op)
		if !op.Valid() {
			return "", nil, fmt.Errorf("wire: instruction %d: unknown opcode 0x%02x", i, ins.Op)
		}
		if op == vm.OpIComp && ins.Cmp > uint8(vm.CmpGte) {
			return "", nil, fmt.Errorf("wire: instruction %d: unknown comparison %d", i, ins.Cmp)
		}
		prog[i] = vm.Instruction{
			Op:     op,
			Int:    ins.Int,
			Str:    ins.Str,
			Bool:   ins.Bool,
			Target: ins.Target,
			Cmp:    vm.Comparison(ins.Cmp),
		}
	}
	return p.Name, prog, nil
}
