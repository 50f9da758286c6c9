// Package scheduler implements the supervisor loop: priority piloting,
// the per-tick feasibility check, and dispatch of the active policy's
// four hooks. One Scheduler value is bound to one (Policy, TaskSet) pair
// for the lifetime of a single evaluation run.
package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"sched-harness/internal/ospriority"
	"sched-harness/internal/policy"
	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
	"sched-harness/internal/timing"
	"sched-harness/internal/trace"
)

// ErrInfeasible is recorded, never propagated across (policy,set) pairs,
// when the feasibility check fails on a tick.
var ErrInfeasible = errors.New("scheduler: task set infeasible under active policy")

// Recommended supervisor/worker priority band: high enough above the
// workers that the supervisor always wins dispatch when both are ready,
// low enough to leave room under it for every worker's own priority.
const (
	DefaultBasePrio = 10
	DefaultMinPrio  = 7
)

// Scheduler is the supervisor: it holds all registered Tasks, the current
// ReadyQueue, the active Policy, and the schedulability flag.
type Scheduler struct {
	tasks []*task.Task
	queue readyqueue.Queue

	pol    policy.Policy
	timing *timing.Timing

	basePrio int
	minPrio  int

	schedulable bool

	log *logrus.Entry

	ownTid int

	trace     trace.Sink
	algoIndex int
}

// New constructs a Scheduler bound to pol and tm, using basePrio/minPrio
// as the BASE_PRIO/MIN_PRIO band exactly as given (DefaultBasePrio and
// DefaultMinPrio are the recommended values). tr receives one begin/end
// pair per tick on the algorithm's trace channel, and one begin/end pair
// per task burst on that task's own channel; algoIndex is this policy's
// slot in the driver's channel space (see trace.AlgoChannel).
func New(pol policy.Policy, tm *timing.Timing, basePrio, minPrio int, tr trace.Sink, algoIndex int) *Scheduler {
	return &Scheduler{
		pol:       pol,
		timing:    tm,
		basePrio:  basePrio,
		minPrio:   minPrio,
		log:       logrus.WithField("comp", "scheduler").WithField("policy", pol.Name()),
		trace:     tr,
		algoIndex: algoIndex,
	}
}

// AddTask registers a Task reference. Must be called before Init.
func (s *Scheduler) AddTask(t *task.Task) { s.tasks = append(s.tasks, t) }

// Tasks implements policy.Scheduler.
func (s *Scheduler) Tasks() []*task.Task { return s.tasks }

// Queue implements policy.Scheduler.
func (s *Scheduler) Queue() *readyqueue.Queue { return &s.queue }

// Schedulable reports the result of the most recent feasibility check.
func (s *Scheduler) Schedulable() bool { return s.schedulable }

// SetOwnSchedulingPolicy implements policy.Scheduler; a Policy's Init hook
// may call it to change the supervisor's own kernel scheduling policy
// (none of the built-in policies do, since Init below already applies
// KernelSchedPolicy). Init pins this goroutine to its OS thread before
// invoking the hook, so the syscall targets the right tid.
func (s *Scheduler) SetOwnSchedulingPolicy(schedPolicy, prio int) error {
	return ospriority.SetScheduler(s.ownTid, schedPolicy, prio)
}

// Deadline implements policy.Scheduler.
func (s *Scheduler) Deadline(nQuanta int, jitter time.Duration) (unix.Timespec, error) {
	return s.timing.AbstimeInQuanta(nQuanta, jitter)
}

// Init raises the supervisor's own priority to BASE_PRIO, invokes the
// policy's Init hook, then starts every registered Task at BASE_PRIO-1.
func (s *Scheduler) Init() error {
	runtime.LockOSThread()
	s.ownTid = ospriority.Gettid()

	if err := ospriority.SetScheduler(s.ownTid, s.pol.KernelSchedPolicy(), s.basePrio); err != nil {
		// Same unprivileged-host caveat as Task.Start: without
		// CAP_SYS_NICE the kernel refuses SCHED_FIFO for the
		// supervisor too. The tick-by-tick r/a bookkeeping this
		// harness measures does not itself require the kernel to
		// honor the requested policy, so log and continue rather
		// than failing every (policy, set) pair on such a host.
		s.log.WithError(err).Warn("could not raise supervisor scheduling policy, continuing at default policy")
	}
	if err := ospriority.PinToCPU(s.ownTid, 0); err != nil {
		// Multi-core hosts without CAP_SYS_NICE keep the supervisor
		// free to migrate; the piloting trick still holds per-core,
		// it just loses the single-CPU simplification.
		s.log.WithError(err).Warn("could not pin supervisor to CPU 0")
	}

	if err := s.pol.Init(s); err != nil {
		return fmt.Errorf("scheduler: policy init: %w", err)
	}

	initialPrio := s.basePrio - 1
	if initialPrio < s.minPrio {
		initialPrio = s.minPrio
	}
	for _, t := range s.tasks {
		if err := t.Start(s.timing.SpinFor, s.pol.KernelSchedPolicy(), initialPrio); err != nil {
			s.haltStarted()
			return fmt.Errorf("scheduler: start task %d: %w", t.ID, err)
		}
	}
	s.schedulable = true
	return nil
}

// Schedule rebuilds the ReadyQueue via the policy hook, then runs the
// feasibility check and stores the result in Schedulable().
func (s *Scheduler) Schedule() {
	s.pol.Schedule(s)
	s.schedulable = s.feasible()

	if s.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		items := s.queue.Items()
		fields := logrus.Fields{"len": len(items)}
		if len(items) > 0 {
			fields["head"] = items[0].ID
			fields["tail"] = items[len(items)-1].ID
		}
		s.log.WithFields(fields).Debug("ready queue rebuilt")
	}
}

// feasible checks the tick's schedulability: the dispatched head is
// allowed to finish exactly as its deadline arrives, but every other
// ready task must have strictly more time left than it needs, since the
// head is occupying the CPU this tick instead of them.
func (s *Scheduler) feasible() bool {
	ok := true
	items := s.queue.Items()
	for i, t := range items {
		if i == 0 {
			ok = ok && t.CompletionTime() <= t.RemainingTime()
		} else {
			ok = ok && t.CompletionTime() < t.RemainingTime()
		}
	}
	return ok
}

// Run executes one tick of piloted dispatch: idle-spin on an empty
// queue, otherwise re-pilot priorities in descending order, release the
// head if needed, block per the policy's shape, then recalc r/a for
// every task. Each tick is bracketed by a trace begin/end pair on the
// policy's own channel; a task's channel gets its own begin/end pair
// spanning however many ticks its burst actually takes to complete.
func (s *Scheduler) Run() error {
	algoChannel := trace.AlgoChannel(len(s.tasks), s.algoIndex)
	s.trace.TraceBegin(algoChannel)
	defer s.trace.TraceEnd(algoChannel)

	if s.queue.Empty() {
		minR := s.minReadyCountdown()
		s.timing.SpinFor(minR)
		s.pol.Recalc(s, nil, false)
		return nil
	}

	items := s.queue.Items()
	prio := s.basePrio - 1
	for _, t := range items {
		if prio < s.minPrio {
			prio = s.minPrio
		}
		t.SetPrio(prio)
		prio--
	}

	head := items[0]
	if !head.AlreadyExecuting() {
		s.trace.TraceBegin(head.ID)
		head.Release()
	}

	completed := s.pol.Block(s, head)
	if completed {
		s.trace.TraceEnd(head.ID)
	}
	s.pol.Recalc(s, head, completed)
	return nil
}

// minReadyCountdown returns the smallest r across all tasks, used both as
// the idle-tick spin duration and as the idle-tick recalc delta.
func (s *Scheduler) minReadyCountdown() int {
	if len(s.tasks) == 0 {
		return 0
	}
	min := s.tasks[0].R()
	for _, t := range s.tasks[1:] {
		if t.R() < min {
			min = t.R()
		}
	}
	return min
}

// Halt stops every Task and clears the registered-task list.
func (s *Scheduler) Halt() {
	s.haltStarted()
	s.tasks = nil
	runtime.UnlockOSThread()
}

func (s *Scheduler) haltStarted() {
	for _, t := range s.tasks {
		t.Stop()
	}
}
