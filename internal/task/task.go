// Package task implements the periodic-task data model: the (C,P,D)
// parameters, the mutable r/a recurrence state, and the worker thread that
// burns CPU on demand via cont/done channels standing in for a pair of
// counting semaphores.
package task

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"sched-harness/internal/ospriority"
)

// TaskStartFailed is returned by Start when the worker thread cannot be
// spawned (fatal for the current (policy, set) pair).
var TaskStartFailed = errors.New("task: worker thread failed to start")

// SyncPrimitiveFailed names a failed semaphore-equivalent primitive
// operation. The cont/done channels that stand in for semaphores here
// cannot fail, so no function in this package returns it.
var SyncPrimitiveFailed = errors.New("task: synchronization primitive failed")

// SpinFunc burns CPU for n quanta; supplied by the Timing collaborator.
// Kept as a function value rather than an interface so Task stays free of
// an import cycle with internal/timing.
type SpinFunc func(nQuanta int)

// Task is one periodic task instance: C/P/D are immutable once constructed;
// r and a are mutated only by the Scheduler's supervisor goroutine (see
// package scheduler). Workers never touch r or a; that split is what keeps
// the bookkeeping race-free without a mutex on the hot path.
type Task struct {
	ID int

	C int // execution time, quanta
	P int // period, quanta
	D int // relative deadline, quanta

	r int // quanta until next release; <=0 means ready
	a int // quanta accumulated this release

	log *logrus.Entry

	cont chan struct{} // released by the supervisor; burn may start
	done chan struct{} // released by the worker; burn has finished

	terminate atomic.Bool // read (acquire) by the worker after every cont wake
	running   atomic.Bool // guards double Start/Stop
	tid       atomic.Int64

	wg sync.WaitGroup
}

// New constructs a Task with a=0, r=0 (ready at t=0). C,P,D must satisfy
// C<=D<=P; the caller (TaskSet) is responsible for validating that before
// construction.
func New(id, c, p, d int) *Task {
	return &Task{
		ID:  id,
		C:   c,
		P:   p,
		D:   d,
		log: logrus.WithField("comp", "task").WithField("task_id", id),
	}
}

// R returns quanta until next release.
func (t *Task) R() int { return t.r }

// A returns quanta accumulated in the current release.
func (t *Task) A() int { return t.a }

// SetR is used exclusively by the active policy's recalc hook.
func (t *Task) SetR(r int) { t.r = r }

// SetA is used exclusively by the active policy's recalc hook; enforces I1.
func (t *Task) SetA(a int) {
	if a < 0 || a > t.C {
		panic(fmt.Sprintf("task %d: a=%d out of bounds [0,%d]", t.ID, a, t.C))
	}
	t.a = a
}

// Ready reports whether the task is eligible for the ReadyQueue.
func (t *Task) Ready() bool { return t.r <= 0 }

// CompletionTime is C-a: quanta still needed to finish the current release.
func (t *Task) CompletionTime() int { return t.C - t.a }

// RemainingTime is D+r: quanta available until the current deadline.
func (t *Task) RemainingTime() int { return t.D + t.r }

// AlreadyExecuting reports whether the task is mid-burn from a prior tick.
func (t *Task) AlreadyExecuting() bool { return t.a > 0 }

// Release posts to cont, waking the worker if it is blocked waiting for a
// new burn. The Scheduler calls this only when AlreadyExecuting() is
// false, since a mid-burn task has nothing left to wake up for; Stop calls
// it unconditionally to break a blocked worker out during teardown.
func (t *Task) Release() {
	select {
	case t.cont <- struct{}{}:
	default:
		// cont has capacity 1; a pending, unconsumed post means the worker
		// has not yet woken from the previous release. Non-blocking send
		// keeps this safe to call from Stop without deadlocking.
	}
}

// WaitDone blocks until the worker posts done (RMA's unbounded block shape).
func (t *Task) WaitDone() {
	<-t.done
}

// TryWaitDone blocks until the worker posts done or the absolute monotonic
// deadline elapses, returning false on timeout. This is the preemptive
// block shape: a policy that can interrupt a burst mid-flight uses this
// instead of WaitDone so it regains control at the deadline either way.
func (t *Task) TryWaitDone(deadline unix.Timespec) bool {
	var now unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &now); err != nil {
		<-t.done
		return true
	}
	remaining := time.Duration(deadline.Nano()-now.Nano()) * time.Nanosecond
	if remaining <= 0 {
		select {
		case <-t.done:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-t.done:
		return true
	case <-timer.C:
		return false
	}
}

// Start spawns the worker thread at the given kernel scheduling policy and
// initial priority. It always resets a=0, r=0 so a Task can be reused
// across runs (testable property: Start resets state).
func (t *Task) Start(spin SpinFunc, schedPolicy int, initialPrio int) error {
	if t.running.Load() {
		return fmt.Errorf("%w: task %d already started", TaskStartFailed, t.ID)
	}
	t.r = 0
	t.a = 0
	t.cont = make(chan struct{}, 1)
	t.done = make(chan struct{}, 1)
	t.terminate.Store(false)

	ready := make(chan error, 1)
	t.wg.Add(1)
	go t.workerLoop(spin, schedPolicy, initialPrio, ready)

	if err := <-ready; err != nil {
		t.wg.Wait()
		return fmt.Errorf("%w: %v", TaskStartFailed, err)
	}
	t.running.Store(true)
	return nil
}

// SetPrio changes the worker's kernel priority. Called by the Scheduler on
// every tick to re-pilot dispatch order; the priority write always
// happens-before the cont post that follows it, so a worker never wakes up
// at its old priority.
func (t *Task) SetPrio(prio int) {
	if !t.running.Load() {
		return
	}
	tid := int(t.tid.Load())
	if err := ospriority.SetParam(tid, prio); err != nil {
		// Same permission caveat as Start: without CAP_SYS_NICE the
		// kernel refuses the priority change. Log and keep going instead
		// of aborting the (policy, set) pair over a host limitation.
		t.log.WithError(err).Warn("could not re-pilot priority")
	}
}

// Stop signals termination, wakes a blocked worker, and joins the thread.
func (t *Task) Stop() {
	if !t.running.Load() {
		return
	}
	t.terminate.Store(true)
	t.Release()
	t.wg.Wait()
	t.running.Store(false)
}

// workerLoop runs for the life of the Task: wait on cont, burn C quanta,
// post done, loop. Termination is read only after a cont wake; the burn
// itself is uninterruptible at the user level.
func (t *Task) workerLoop(spin SpinFunc, schedPolicy int, initialPrio int, ready chan<- error) {
	defer t.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := ospriority.Gettid()
	if err := ospriority.SetScheduler(tid, schedPolicy, initialPrio); err != nil {
		// Unprivileged hosts (most CI containers, dev sandboxes) deny
		// SCHED_FIFO; fall back to the default policy rather than
		// failing the whole run, since the bookkeeping this harness
		// measures (r/a, feasibility) does not itself depend on the
		// kernel actually honoring the priority. True priority piloting
		// still applies whenever the host permits it.
		t.log.WithError(err).Warn("could not set FIFO scheduling policy, continuing at default policy")
	}
	if err := ospriority.PinToCPU(tid, 0); err != nil {
		t.log.WithError(err).Warn("could not pin worker to CPU 0")
	}
	t.tid.Store(int64(tid))
	ready <- nil

	for {
		<-t.cont
		if t.terminate.Load() { // acquire semantics via atomic.Bool
			return
		}

		spin(t.C)

		select {
		case t.done <- struct{}{}:
		default:
		}
	}
}
