// Package edf implements Earliest-Deadline-First scheduling, preemptive:
// priority by ascending remaining time D+r, a timed block bounded by one
// quantum plus jitter.
package edf

import (
	"sched-harness/internal/config"
	"sched-harness/internal/policy"
	"sched-harness/internal/policy/preemptive"
	"sched-harness/internal/task"
)

// New constructs the EDF policy using cfg's period/jitter constants.
func New(cfg *config.Config) policy.Policy {
	return preemptive.New("EDF", func(a, b *task.Task) bool {
		return a.RemainingTime() < b.RemainingTime()
	}, cfg.EDFPeriodQuanta, cfg.EDFJitter)
}
