package vm

import "errors"

// The closed failure taxonomy. Every operation that can fail returns one of
// these sentinels, possibly wrapped with context; callers match with
// errors.Is. None of these conditions are recovered internally.
var (
	// ErrIntegerOverflow reports checked arithmetic wrapping past the
	// integer range.
	ErrIntegerOverflow = errors.New("integer overflow")

	// ErrDivByZero reports division with a zero divisor.
	ErrDivByZero = errors.New("division by zero")

	// ErrTypeMismatch reports a popped value whose tag does not match the
	// operation's expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrStackUnderflow reports a pop on an empty operand stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrStackOverflow reports a push on a full operand stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrOutOfMemory reports heap cell allocation failure.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrProgramOverflow reports an instruction sequence exhausted without
	// reaching halt.
	ErrProgramOverflow = errors.New("program overflow")
)
