package scheduler

import (
	"testing"

	"sched-harness/internal/policy"
	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
	"sched-harness/internal/trace"
)

// stubPolicy drives Schedule/feasible/minReadyCountdown without spawning
// any worker threads, so these tests never touch the kernel scheduling
// syscalls exercised by Init/Run.
type stubPolicy struct {
	less readyqueue.Less
}

func (stubPolicy) Name() string              { return "STUB" }
func (stubPolicy) KernelSchedPolicy() int     { return 0 }
func (stubPolicy) Preemptive() bool           { return false }
func (stubPolicy) Init(policy.Scheduler) error { return nil }
func (p stubPolicy) Schedule(s policy.Scheduler) {
	s.Queue().Rebuild(s.Tasks(), p.less)
}
func (stubPolicy) Block(policy.Scheduler, *task.Task) bool                { return true }
func (stubPolicy) Recalc(policy.Scheduler, *task.Task, bool) {}

func byPeriod(a, b *task.Task) bool { return a.P < b.P }

func newTestScheduler(tasks ...*task.Task) *Scheduler {
	s := New(stubPolicy{less: byPeriod}, nil, DefaultBasePrio, DefaultMinPrio, trace.NewCSVSink(""), 0)
	for _, t := range tasks {
		s.AddTask(t)
	}
	return s
}

func TestFeasibleHeadAllowsEquality(t *testing.T) {
	head := task.New(0, 3, 10, 7)
	head.SetR(-4) // remaining = D+r = 3; completion = C-a = 3

	s := newTestScheduler(head)
	s.Schedule()

	if !s.Schedulable() {
		t.Fatalf("Schedulable() = false, want true (head allows completion==remaining)")
	}
}

func TestFeasibleNonHeadRequiresStrictInequality(t *testing.T) {
	head := task.New(0, 1, 5, 5)    // sorts first: completion=1, remaining=5
	other := task.New(1, 5, 20, 5) // sorts second (larger P): completion=5, remaining=D+r=5

	s := newTestScheduler(head, other)
	s.Schedule()

	if s.Schedulable() {
		t.Fatalf("Schedulable() = true, want false (second-in-queue task fails strict inequality at equality)")
	}
}

func TestFeasibleEmptyQueueIsTriviallyFeasible(t *testing.T) {
	notReady := task.New(0, 1, 10, 10)
	notReady.SetR(5)

	s := newTestScheduler(notReady)
	s.Schedule()

	if !s.Schedulable() {
		t.Fatalf("Schedulable() = false, want true (empty ReadyQueue has nothing to violate feasibility)")
	}
}

func TestMinReadyCountdown(t *testing.T) {
	t1 := task.New(0, 1, 10, 10)
	t1.SetR(4)
	t2 := task.New(1, 1, 10, 10)
	t2.SetR(1)
	t3 := task.New(2, 1, 10, 10)
	t3.SetR(7)

	s := newTestScheduler(t1, t2, t3)
	if got := s.minReadyCountdown(); got != 1 {
		t.Fatalf("minReadyCountdown() = %d, want 1", got)
	}
}

func TestMinReadyCountdownNoTasks(t *testing.T) {
	s := newTestScheduler()
	if got := s.minReadyCountdown(); got != 0 {
		t.Fatalf("minReadyCountdown() = %d, want 0 on an empty scheduler", got)
	}
}
