// Package policy defines the pluggable scheduling-policy contract: a
// capability set of four hooks over a Scheduler, rather than an
// inheritance hierarchy. Concrete policies live in the rma, edf and sct
// subpackages.
package policy

import (
	"time"

	"golang.org/x/sys/unix"

	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
)

// Scheduler is the subset of the scheduler core a Policy hook needs. It is
// declared here (rather than imported from package scheduler) to avoid an
// import cycle: package scheduler imports package policy, not vice versa.
type Scheduler interface {
	// Tasks returns every registered task, in TaskSet order.
	Tasks() []*task.Task
	// Queue returns the scheduler's ReadyQueue, owned by the scheduler and
	// rebuilt every tick by the policy's Schedule hook.
	Queue() *readyqueue.Queue
	// SetOwnSchedulingPolicy sets the supervisor's own kernel scheduling
	// policy/priority (Init hook only).
	SetOwnSchedulingPolicy(schedPolicy, prio int) error
	// Deadline returns now + nQuanta*QUANTUM_MS + jitter on the host
	// monotonic clock, for a preemptive policy's timed Block.
	Deadline(nQuanta int, jitter time.Duration) (unix.Timespec, error)
}

// MinR returns the smallest r across tasks; used by a Recalc hook's idle
// branch (no head ran this tick) to compute the tick's elapsed-quanta
// delta.
func MinR(tasks []*task.Task) int {
	min := tasks[0].R()
	for _, t := range tasks[1:] {
		if t.R() < min {
			min = t.R()
		}
	}
	return min
}

// Policy is the four-hook capability set a concrete scheduling strategy
// must provide.
type Policy interface {
	// Name identifies the policy in driver output and traces.
	Name() string
	// KernelSchedPolicy is the preferred kernel policy code for workers
	// (FIFO-class for every built-in policy).
	KernelSchedPolicy() int
	// Preemptive reports whether Block uses a bounded (timed) wait.
	Preemptive() bool
	// Init is invoked once, after the supervisor has already set its own
	// kernel scheduling policy to KernelSchedPolicy() at BASE_PRIO. A hook
	// may change that through s.SetOwnSchedulingPolicy; the built-in
	// policies' hooks do nothing.
	Init(s Scheduler) error
	// Schedule rebuilds s.Queue() from s.Tasks() using this policy's
	// ordering key.
	Schedule(s Scheduler)
	// Block suspends the supervisor per this policy's block shape: an
	// unbounded wait for completion (RMA) or a timed wait bounded by the
	// policy's period+jitter (EDF, SCT). It returns whether the head
	// task's burn completed (true) or the wait timed out (false). When
	// head is nil (empty ReadyQueue) Block is not called; the scheduler
	// idles instead.
	Block(s Scheduler, head *task.Task) (completed bool)
	// Recalc is the single place r/a are mutated, given what happened on
	// this tick: head is the task that ran (nil on an idle tick), and
	// completed reports whether its burn actually finished.
	Recalc(s Scheduler, head *task.Task, completed bool)
}
