// Package harness implements the driver: it runs every registered Policy
// against every registered TaskSet for a bounded wall-clock budget,
// reporting PASS/FAIL per pair. Calibration, tracing and the task sets
// the top-level program registers are collaborators wired in here,
// separate from the core scheduling engine in packages scheduler/
// policy/task/taskset/readyqueue.
package harness

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sched-harness/internal/config"
	"sched-harness/internal/policy"
	"sched-harness/internal/registry"
	"sched-harness/internal/scheduler"
	"sched-harness/internal/taskset"
	"sched-harness/internal/timing"
	"sched-harness/internal/trace"
	"sched-harness/internal/util"
)

// NamedPolicy pairs a Policy with driver-facing metadata.
type NamedPolicy struct {
	Index  int
	Policy policy.Policy
}

// Harness owns the registered Policies and TaskSets, the shared Timing
// collaborator, a Trace sink, and a run Registry. A TaskSet's Tasks are
// rebuilt fresh (via Reset) after every policy has been tried against
// them, so no run carries over r/a state left by the previous policy.
type Harness struct {
	cfg *config.Config
	tm  *timing.Timing

	policies []NamedPolicy
	sets     []*taskset.TaskSet

	reg   *registry.Registry
	trace trace.Sink

	log *logrus.Entry
}

// New constructs a Harness. tm must already be calibrated.
func New(cfg *config.Config, tm *timing.Timing, tr trace.Sink, reg *registry.Registry) *Harness {
	return &Harness{
		cfg:   cfg,
		tm:    tm,
		reg:   reg,
		trace: tr,
		log:   logrus.WithField("comp", "harness"),
	}
}

// AddPolicy registers a Policy, returning its driver-facing index.
func (h *Harness) AddPolicy(p policy.Policy) int {
	idx := len(h.policies)
	h.policies = append(h.policies, NamedPolicy{Index: idx, Policy: p})
	return idx
}

// AddTaskSet registers a TaskSet, returning its driver-facing index.
func (h *Harness) AddTaskSet(ts *taskset.TaskSet) int {
	idx := len(h.sets)
	h.sets = append(h.sets, ts)
	return idx
}

// Line is one formatted driver output line, e.g.
// "[ ALGO 0 TEST SET 2 PASS ]".
type Line struct {
	PolicyIndex int
	SetIndex    int
	Verdict     registry.Verdict
}

func (l Line) String() string {
	return fmt.Sprintf("[ ALGO %d TEST SET %d %s ]", l.PolicyIndex, l.SetIndex, l.Verdict)
}

// Run evaluates every (policy, set) pair in registration order and
// returns the formatted output lines in that same order. Exit status is
// always left at 0 by the caller (cmd/harness), regardless of individual
// PASS/FAIL outcomes.
func (h *Harness) Run() []Line {
	runID := util.NewRunID()
	h.log.WithField("run_id", runID).Info("starting run")

	var lines []Line
	for _, np := range h.policies {
		for si, ts := range h.sets {
			rec := h.runOne(np, si, ts)
			h.reg.Put(rec)
			verdict := rec.Verdict
			lines = append(lines, Line{PolicyIndex: np.Index, SetIndex: si, Verdict: verdict})
			h.log.WithFields(logrus.Fields{
				"policy": np.Policy.Name(),
				"set":    ts.Name,
				"ticks":  rec.Ticks,
				"verdict": verdict,
			}).Info("pair evaluated")
			ts.Reset()
		}
	}
	return lines
}

// runOne evaluates one (policy, set) pair for up to the configured
// wall-clock budget: init, then loop schedule and (if still schedulable)
// run, until the budget elapses or schedulable goes false. Per-tick and
// per-task trace events are emitted by the Scheduler itself, addressed
// on this policy's own slot of the trace channel space.
func (h *Harness) runOne(np NamedPolicy, setIndex int, ts *taskset.TaskSet) registry.Record {
	sched := scheduler.New(np.Policy, h.tm, h.cfg.BasePrio, h.cfg.MinPrio, h.trace, np.Index)
	for _, t := range ts.Tasks() {
		sched.AddTask(t)
	}

	rec := registry.Record{
		PolicyIndex: np.Index,
		SetIndex:    setIndex,
		PolicyName:  np.Policy.Name(),
		SetName:     ts.Name,
	}

	if err := sched.Init(); err != nil {
		rec.Verdict = registry.Fail
		rec.Err = err
		return rec
	}
	defer sched.Halt()

	deadline := time.Now().Add(h.cfg.Budget())
	ticks := 0
	for time.Now().Before(deadline) {
		sched.Schedule()
		if !sched.Schedulable() {
			break
		}
		if err := sched.Run(); err != nil {
			rec.Err = err
			break
		}
		ticks++
	}

	rec.Ticks = ticks
	rec.Elapsed = h.cfg.Budget()
	if sched.Schedulable() && rec.Err == nil {
		rec.Verdict = registry.Pass
	} else {
		rec.Verdict = registry.Fail
		if rec.Err == nil {
			rec.Err = scheduler.ErrInfeasible
		}
	}
	return rec
}
