package vm

// ---------------------------------------------------------------------------
// Stack: bounded operand stack
// ---------------------------------------------------------------------------

// DefaultStackCapacity is the default operand stack capacity in words.
const DefaultStackCapacity = 512

// Stack is a fixed-capacity sequence of words with a stack pointer
// indexing the first unused slot. It never resizes: pushing at capacity
// fails with ErrStackOverflow. Raw push/pop move words without decoding
// or freeing them; ownership handling is layered on by the VM's typed
// accessors.
type Stack struct {
	words []Word
	sp    int
}

// NewStack creates an empty stack with the given capacity. A non-positive
// capacity selects DefaultStackCapacity.
func NewStack(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultStackCapacity
	}
	return &Stack{words: make([]Word, capacity)}
}

// Push writes w at the current top and advances the stack pointer.
func (s *Stack) Push(w Word) error {
	if s.sp >= len(s.words) {
		return ErrStackOverflow
	}
	s.words[s.sp] = w
	s.sp++
	return nil
}

// Pop returns the top word and retreats the stack pointer.
func (s *Stack) Pop() (Word, error) {
	if s.sp <= 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.words[s.sp], nil
}

// Top returns the top word without moving the stack pointer.
func (s *Stack) Top() (Word, error) {
	if s.sp <= 0 {
		return 0, ErrStackUnderflow
	}
	return s.words[s.sp-1], nil
}

// Full reports whether the stack is at capacity. Typed pushes check this
// before allocating so an overflow never strands a fresh heap cell.
func (s *Stack) Full() bool {
	return s.sp >= len(s.words)
}

// Depth returns the number of occupied slots.
func (s *Stack) Depth() int {
	return s.sp
}

// Capacity returns the fixed capacity in words.
func (s *Stack) Capacity() int {
	return len(s.words)
}

// Words returns a copy of the occupied region, bottom first.
func (s *Stack) Words() []Word {
	out := make([]Word, s.sp)
	copy(out, s.words[:s.sp])
	return out
}
