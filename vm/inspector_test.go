package vm

import (
	"strings"
	"testing"
)

func TestDumpStackEmpty(t *testing.T) {
	vm := New()
	defer vm.Close()
	if got := vm.DumpStack(); got != "<empty stack>" {
		t.Errorf("DumpStack = %q, want %q", got, "<empty stack>")
	}
}

func TestDumpStackContents(t *testing.T) {
	vm := New()
	defer vm.Close()

	if err := vm.PushInt(42); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushString("hi"); err != nil {
		t.Fatal(err)
	}
	if err := vm.PushBool(true); err != nil {
		t.Fatal(err)
	}

	dump := vm.DumpStack()
	for _, want := range []string{"integer 42", `string "hi"`, "boolean true"} {
		if !strings.Contains(dump, want) {
			t.Errorf("DumpStack missing %q:\n%s", want, dump)
		}
	}

	// Top of stack renders first.
	if !strings.HasPrefix(strings.TrimSpace(dump), "2") {
		t.Errorf("DumpStack should render top first:\n%s", dump)
	}
}

func TestDumpStackTruncatesLongStrings(t *testing.T) {
	vm := New()
	defer vm.Close()

	long := strings.Repeat("x", MaxStringPreview*2)
	if err := vm.PushString(long); err != nil {
		t.Fatal(err)
	}
	dump := vm.DumpStack()
	if strings.Contains(dump, long) {
		t.Error("DumpStack should truncate long strings")
	}
	if !strings.Contains(dump, "...") {
		t.Errorf("DumpStack missing ellipsis:\n%s", dump)
	}
}
