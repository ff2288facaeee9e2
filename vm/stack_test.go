package vm

import (
	"errors"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack(4)

	for i := uint64(0); i < 3; i++ {
		if err := s.Push(MakeImmediate(TagInteger, i)); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if s.Depth() != 3 {
		t.Fatalf("Depth = %d, want 3", s.Depth())
	}

	// LIFO order.
	for i := uint64(2); ; i-- {
		w, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got := w.Immediate(); got != i {
			t.Errorf("Pop = %d, want %d", got, i)
		}
		if i == 0 {
			break
		}
	}
	if s.Depth() != 0 {
		t.Errorf("Depth after draining = %d, want 0", s.Depth())
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack(4)
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop on empty = %v, want ErrStackUnderflow", err)
	}
	if _, err := s.Top(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Top on empty = %v, want ErrStackUnderflow", err)
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack(2)
	if err := s.Push(MakeBool(true)); err != nil {
		t.Fatalf("push 1: %v", err)
	}
	if err := s.Push(MakeBool(false)); err != nil {
		t.Fatalf("push 2: %v", err)
	}
	if !s.Full() {
		t.Error("Full = false at capacity")
	}
	if err := s.Push(MakeBool(true)); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("push at capacity = %v, want ErrStackOverflow", err)
	}
}

func TestStackDefaultCapacity(t *testing.T) {
	s := NewStack(0)
	if s.Capacity() != DefaultStackCapacity {
		t.Errorf("Capacity = %d, want %d", s.Capacity(), DefaultStackCapacity)
	}
}

func TestStackWordsIsCopy(t *testing.T) {
	s := NewStack(4)
	if err := s.Push(MakeImmediate(TagInteger, 1)); err != nil {
		t.Fatal(err)
	}
	words := s.Words()
	words[0] = MakeImmediate(TagInteger, 99)

	w, err := s.Top()
	if err != nil {
		t.Fatal(err)
	}
	if w.Immediate() != 1 {
		t.Error("Words() aliases the live stack region")
	}
}
