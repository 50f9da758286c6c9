// Package preemptive holds the Block/Recalc logic shared by EDF and SCT:
// the two policies differ only in ordering key, name, and period/jitter
// constants, so a single Base parameterized on those three things replaces
// what would otherwise be two near-duplicate policy implementations.
package preemptive

import (
	"time"

	"sched-harness/internal/ospriority"
	"sched-harness/internal/policy"
	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
)

// Base implements policy.Policy's Schedule/Block/Recalc/Init for any
// preemptive, FIFO-class policy whose only distinguishing feature is its
// ReadyQueue ordering key.
type Base struct {
	name       string
	less       readyqueue.Less
	periodQuanta int
	jitter     time.Duration
}

// New constructs a preemptive policy base.
func New(name string, less readyqueue.Less, periodQuanta int, jitter time.Duration) *Base {
	return &Base{name: name, less: less, periodQuanta: periodQuanta, jitter: jitter}
}

// Name implements policy.Policy.
func (b *Base) Name() string { return b.name }

// KernelSchedPolicy implements policy.Policy: FIFO-class, same as every
// other built-in policy.
func (b *Base) KernelSchedPolicy() int { return ospriority.SchedFIFO }

// Preemptive implements policy.Policy.
func (b *Base) Preemptive() bool { return true }

// Init implements policy.Policy.
func (b *Base) Init(s policy.Scheduler) error {
	return nil
}

// Schedule implements policy.Policy: rebuild the ReadyQueue using this
// policy's ordering key.
func (b *Base) Schedule(s policy.Scheduler) {
	s.Queue().Rebuild(s.Tasks(), b.less)
}

// Block implements policy.Policy: wait for head.done until now +
// period*quantum + jitter. On timeout the supervisor simply proceeds to
// Recalc; the worker stays mid-burn and is resumed next tick since its
// priority is already set for that.
func (b *Base) Block(s policy.Scheduler, head *task.Task) bool {
	deadline, err := s.Deadline(b.periodQuanta, b.jitter)
	if err != nil {
		head.WaitDone()
		return true
	}
	return head.TryWaitDone(deadline)
}

// Recalc implements policy.Policy: identical for EDF and SCT, since both
// share this Base and differ only in their ordering key.
func (b *Base) Recalc(s policy.Scheduler, head *task.Task, completed bool) {
	tasks := s.Tasks()

	var delta int
	if head != nil {
		delta = b.periodQuanta
		head.SetA(head.A() + delta)
		if head.CompletionTime() > 0 {
			head.SetR(head.R() - delta)
		} else {
			head.SetR(head.P - delta + head.R())
			head.SetA(0)
		}
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
