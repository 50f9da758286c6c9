package harness

import (
	"testing"
	"time"

	"sched-harness/internal/config"
	"sched-harness/internal/policy/rma"
	"sched-harness/internal/registry"
	"sched-harness/internal/taskset"
	"sched-harness/internal/timing"
	"sched-harness/internal/trace"
)

func TestLineString(t *testing.T) {
	l := Line{PolicyIndex: 1, SetIndex: 2, Verdict: registry.Pass}
	if got, want := l.String(), "[ ALGO 1 TEST SET 2 PASS ]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestRunSingleTaskUnderRMAPasses(t *testing.T) {
	cfg := config.Default()
	cfg.QuantumMS = 1 // short quanta keep calibration and each tick quick; the budget stays SecondsPerTest

	tm := timing.New().WithQuantum(cfg.Quantum())
	if err := tm.Calibrate(); err != nil {
		t.Fatalf("Calibrate() = %v", err)
	}

	reg := registry.New(time.Minute)
	defer reg.Close()

	h := New(cfg, tm, trace.NewCSVSink(""), reg)
	h.AddPolicy(rma.New())

	ts, err := taskset.New(0, "single-task", taskset.Param{C: 1, P: 5, D: 5})
	if err != nil {
		t.Fatalf("taskset.New() = %v", err)
	}
	h.AddTaskSet(ts)

	lines := h.Run()
	if len(lines) != 1 {
		t.Fatalf("Run() returned %d lines, want 1", len(lines))
	}
	if lines[0].Verdict != registry.Pass {
		t.Fatalf("verdict = %s, want PASS", lines[0].Verdict)
	}

	rec, ok := reg.Get(0, 0)
	if !ok {
		t.Fatalf("registry missing record for (0,0)")
	}
	if rec.Verdict != registry.Pass {
		t.Fatalf("registry verdict = %s, want PASS", rec.Verdict)
	}
}

func TestDefaultTaskSetsBuildWithoutError(t *testing.T) {
	sets, err := DefaultTaskSets()
	if err != nil {
		t.Fatalf("DefaultTaskSets() = %v", err)
	}
	if len(sets) != 6 {
		t.Fatalf("DefaultTaskSets() returned %d sets, want 6", len(sets))
	}
	for _, ts := range sets {
		if ts.Len() == 0 {
			t.Fatalf("set %q has no tasks", ts.Name)
		}
	}
}
