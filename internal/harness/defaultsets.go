package harness

import "sched-harness/internal/taskset"

// DefaultTaskSets returns six task sets covering the harness's standard
// end-to-end scenarios: a single-task set, two multi-task fixture sets,
// an infeasible pair, an idle-tick set, and a preemption-smoke set.
func DefaultTaskSets() ([]*taskset.TaskSet, error) {
	specs := []struct {
		name   string
		params []taskset.Param
	}{
		{"single-task", []taskset.Param{{C: 1, P: 5, D: 5}}},
		{"source-set-1", []taskset.Param{
			{C: 1, P: 7, D: 7},
			{C: 2, P: 5, D: 5},
			{C: 1, P: 8, D: 8},
			{C: 1, P: 10, D: 10},
			{C: 2, P: 16, D: 16},
		}},
		{"source-set-2", []taskset.Param{
			{C: 1, P: 3, D: 3},
			{C: 2, P: 5, D: 5},
			{C: 1, P: 10, D: 10},
		}},
		{"infeasible-pair", []taskset.Param{
			{C: 5, P: 6, D: 6},
			{C: 5, P: 6, D: 6},
		}},
		{"idle-tick", []taskset.Param{{C: 1, P: 100, D: 100}}},
		{"preemption-smoke", []taskset.Param{
			{C: 10, P: 20, D: 20},
			{C: 1, P: 5, D: 5},
		}},
	}

	sets := make([]*taskset.TaskSet, 0, len(specs))
	for i, s := range specs {
		ts, err := taskset.New(i, s.name, s.params...)
		if err != nil {
			return nil, err
		}
		sets = append(sets, ts)
	}
	return sets, nil
}
