package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ingotvm/ingot/vm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openTestStore(t)

	prog := []vm.Instruction{
		vm.PushInt(6), vm.PushInt(7), vm.Mul(), vm.Halt(),
	}
	if err := s.Save("mul", prog); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("mul")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(prog) {
		t.Fatalf("len = %d, want %d", len(got), len(prog))
	}
	for i := range prog {
		if got[i] != prog[i] {
			t.Errorf("instruction %d = %v, want %v", i, got[i], prog[i])
		}
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("p", []vm.Instruction{vm.Halt()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("p", []vm.Instruction{vm.PushInt(1), vm.Halt()}); err != nil {
		t.Fatalf("Save over existing: %v", err)
	}

	got, err := s.Load("p")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (replaced)", len(got))
	}

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("List = %d entries, want 1", len(entries))
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load("nope"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Load missing = %v, want ErrProgramNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"beta", "alpha"} {
		if err := s.Save(name, []vm.Instruction{vm.Halt()}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List = %d entries, want 2", len(entries))
	}
	if entries[0].Name != "alpha" || entries[1].Name != "beta" {
		t.Errorf("List order = %q, %q; want alpha, beta", entries[0].Name, entries[1].Name)
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Errorf("entry %q has empty id", e.Name)
		}
		if e.Instructions != 1 {
			t.Errorf("entry %q instruction count = %d, want 1", e.Name, e.Instructions)
		}
		if e.CreatedAt.IsZero() {
			t.Errorf("entry %q has zero created_at", e.Name)
		}
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("gone", []vm.Instruction{vm.Halt()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("gone"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Load after delete = %v, want ErrProgramNotFound", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Delete missing = %v, want ErrProgramNotFound", err)
	}
}

// A stored program survives a round trip and still runs.
func TestStoredProgramRuns(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("answer", []vm.Instruction{
		vm.PushInt(40), vm.PushInt(2), vm.Add(), vm.Halt(),
	}); err != nil {
		t.Fatal(err)
	}
	prog, err := s.Load("answer")
	if err != nil {
		t.Fatal(err)
	}

	m := vm.New()
	defer m.Close()
	if err := m.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := m.PopInt()
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}
