// Package taskset implements an identified ordered collection of Tasks,
// constructed from a sequence of (C,P,D) tuples. Destruction of a
// TaskSet's Tasks is owned here; it must happen only after a Scheduler
// using the set has released all worker threads.
package taskset

import (
	"fmt"

	"github.com/huandu/go-clone"

	"sched-harness/internal/task"
)

// Param is one (C,P,D) tuple describing a periodic task.
type Param struct {
	C int
	P int
	D int
}

// TaskSet is an identified, ordered collection of Tasks.
type TaskSet struct {
	ID     int
	Name   string
	params []Param
	tasks  []*task.Task
}

// New constructs a TaskSet from a non-empty sequence of (C,P,D) tuples. It
// validates C<=D<=P and C>=1 for every tuple.
func New(id int, name string, params ...Param) (*TaskSet, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("taskset %d (%s): count must be strictly positive", id, name)
	}
	// Deep-clone the template so every TaskSet owns an independent copy of
	// its parameters, matching the reuse-across-runs idempotence property.
	cloned := clone.Clone(params).([]Param)
	for i, p := range cloned {
		if p.C < 1 {
			return nil, fmt.Errorf("taskset %d (%s): task %d: C=%d must be >=1", id, name, i, p.C)
		}
		if p.D < p.C {
			return nil, fmt.Errorf("taskset %d (%s): task %d: D=%d must be >=C=%d", id, name, i, p.D, p.C)
		}
		if p.P < p.D {
			return nil, fmt.Errorf("taskset %d (%s): task %d: P=%d must be >=D=%d", id, name, i, p.P, p.D)
		}
	}

	ts := &TaskSet{ID: id, Name: name, params: cloned}
	ts.tasks = make([]*task.Task, len(cloned))
	for i, p := range cloned {
		ts.tasks[i] = task.New(i, p.C, p.P, p.D)
	}
	return ts, nil
}

// Tasks returns the set's Task references, in construction order. The
// TaskSet retains ownership; callers must not outlive a Scheduler bound to
// this set without calling Reset first.
func (ts *TaskSet) Tasks() []*task.Task { return ts.tasks }

// Len reports how many tasks the set contains.
func (ts *TaskSet) Len() int { return len(ts.tasks) }

// Utilization returns sum(C_i/P_i), an informational feasibility hint
// available before scheduling. The harness does not consult it; the
// actual admission decision is the per-tick check in package scheduler.
func (ts *TaskSet) Utilization() float64 {
	var u float64
	for _, p := range ts.params {
		u += float64(p.C) / float64(p.P)
	}
	return u
}

// Reset rebuilds fresh Task values from the retained parameter template,
// so the same TaskSet can be handed to successive Schedulers (one per
// policy) without carrying over r/a state from a prior run.
func (ts *TaskSet) Reset() {
	ts.tasks = make([]*task.Task, len(ts.params))
	for i, p := range ts.params {
		ts.tasks[i] = task.New(i, p.C, p.P, p.D)
	}
}
