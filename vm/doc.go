// Package vm implements the Ingot virtual machine.
//
// This package contains:
//   - Tagged 64-bit word representation with an immediate fast path
//   - Heap cell arena for boxed integers and strings
//   - Bounded operand stack
//   - Instruction set and interpreter loop
package vm
