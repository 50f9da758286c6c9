package task

import "testing"

func TestNewResetsState(t *testing.T) {
	tk := New(0, 3, 10, 10)
	if tk.R() != 0 || tk.A() != 0 {
		t.Fatalf("new task should start with r=0,a=0; got r=%d a=%d", tk.R(), tk.A())
	}
	if !tk.Ready() {
		t.Fatalf("task with r=0 should be ready at t=0")
	}
}

func TestCompletionAndRemainingTime(t *testing.T) {
	tk := New(0, 3, 10, 8)
	tk.SetA(1)
	tk.SetR(-2)
	if got := tk.CompletionTime(); got != 2 {
		t.Fatalf("CompletionTime() = %d, want 2", got)
	}
	if got := tk.RemainingTime(); got != 6 {
		t.Fatalf("RemainingTime() = %d, want 6", got)
	}
	if !tk.AlreadyExecuting() {
		t.Fatalf("a=1 should report AlreadyExecuting")
	}
}

func TestSetABoundsPanic(t *testing.T) {
	tk := New(0, 3, 10, 10)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic setting a beyond C")
		}
	}()
	tk.SetA(4)
}

func TestSetANegativePanics(t *testing.T) {
	tk := New(0, 3, 10, 10)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic setting a negative")
		}
	}()
	tk.SetA(-1)
}
