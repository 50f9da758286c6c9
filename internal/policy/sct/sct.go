// Package sct implements Shortest-Completion-Time scheduling, preemptive:
// priority by ascending completion time C-a, the same timed block shape
// as EDF.
package sct

import (
	"sched-harness/internal/config"
	"sched-harness/internal/policy"
	"sched-harness/internal/policy/preemptive"
	"sched-harness/internal/task"
)

// New constructs the SCT policy using cfg's period/jitter constants.
func New(cfg *config.Config) policy.Policy {
	return preemptive.New("SCT", func(a, b *task.Task) bool {
		return a.CompletionTime() < b.CompletionTime()
	}, cfg.SCTPeriodQuanta, cfg.SCTJitter)
}
