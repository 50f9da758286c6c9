// Package rma implements Rate-Monotonic scheduling, non-preemptive:
// priority by ascending period, blocking on full completion of the head's
// burn.
package rma

import (
	"sched-harness/internal/ospriority"
	"sched-harness/internal/policy"
	"sched-harness/internal/task"
)

// Policy is the Rate-Monotonic plug-in.
type Policy struct{}

// New constructs the RMA policy.
func New() *Policy { return &Policy{} }

// Name implements policy.Policy.
func (Policy) Name() string { return "RMA" }

// KernelSchedPolicy implements policy.Policy.
func (Policy) KernelSchedPolicy() int { return ospriority.SchedFIFO }

// Preemptive implements policy.Policy: RMA blocks until completion.
func (Policy) Preemptive() bool { return false }

// Init implements policy.Policy; nothing beyond what Scheduler.Init
// already does before invoking this hook.
func (Policy) Init(s policy.Scheduler) error { return nil }

// Schedule implements policy.Policy: order by ascending period P.
func (Policy) Schedule(s policy.Scheduler) {
	s.Queue().Rebuild(s.Tasks(), func(a, b *task.Task) bool {
		return a.P < b.P
	})
}

// Block implements policy.Policy: unbounded wait for completion.
func (Policy) Block(s policy.Scheduler, head *task.Task) bool {
	head.WaitDone()
	return true
}

// Recalc implements policy.Policy: the head that ran consumes its full C
// this tick and is re-released P-C quanta out; every other task's r simply
// counts down by the quanta that elapsed.
func (Policy) Recalc(s policy.Scheduler, head *task.Task, completed bool) {
	tasks := s.Tasks()

	var delta int
	if head != nil {
		delta = head.C
		head.SetR(head.P - delta + head.R())
		head.SetA(0)
	} else {
		delta = policy.MinR(tasks)
	}

	for _, t := range tasks {
		if t == head {
			continue
		}
		t.SetR(t.R() - delta)
	}
}
