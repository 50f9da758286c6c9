package rma

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
)

// fakeScheduler implements policy.Scheduler with just enough behavior for
// Schedule/Block/Recalc to exercise: a fixed task list and an owned queue.
type fakeScheduler struct {
	tasks []*task.Task
	queue readyqueue.Queue
}

func (f *fakeScheduler) Tasks() []*task.Task        { return f.tasks }
func (f *fakeScheduler) Queue() *readyqueue.Queue   { return &f.queue }
func (f *fakeScheduler) SetOwnSchedulingPolicy(int, int) error { return nil }
func (f *fakeScheduler) Deadline(int, time.Duration) (unix.Timespec, error) {
	return unix.Timespec{}, nil
}

func TestScheduleOrdersByAscendingPeriod(t *testing.T) {
	t1 := task.New(0, 1, 10, 10)
	t2 := task.New(1, 1, 5, 5)
	s := &fakeScheduler{tasks: []*task.Task{t1, t2}}

	p := New()
	p.Schedule(s)

	items := s.Queue().Items()
	if len(items) != 2 || items[0] != t2 || items[1] != t1 {
		t.Fatalf("expected [task1 task0], got %v", items)
	}
}

func TestRecalcOnCompletion(t *testing.T) {
	head := task.New(0, 3, 10, 10)
	head.SetA(3)
	other := task.New(1, 1, 5, 5)
	s := &fakeScheduler{tasks: []*task.Task{head, other}}

	p := New()
	p.Recalc(s, head, true)

	if head.A() != 0 {
		t.Fatalf("head.A() = %d, want 0 after completion", head.A())
	}
	if head.R() != head.P-head.C {
		t.Fatalf("head.R() = %d, want %d", head.R(), head.P-head.C)
	}
	if other.R() != -head.C {
		t.Fatalf("other.R() = %d, want %d (decremented by head's C)", other.R(), -head.C)
	}
}

func TestRecalcIdleBranchUsesMinR(t *testing.T) {
	t1 := task.New(0, 1, 10, 10)
	t1.SetR(4)
	t2 := task.New(1, 1, 5, 5)
	t2.SetR(2)
	s := &fakeScheduler{tasks: []*task.Task{t1, t2}}

	p := New()
	p.Recalc(s, nil, false)

	if t1.R() != 2 || t2.R() != 0 {
		t.Fatalf("idle recalc: t1.R()=%d t2.R()=%d, want 2 and 0", t1.R(), t2.R())
	}
}

func TestNameAndShape(t *testing.T) {
	p := New()
	if p.Name() != "RMA" {
		t.Fatalf("Name() = %q, want RMA", p.Name())
	}
	if p.Preemptive() {
		t.Fatalf("Preemptive() = true, want false")
	}
}
