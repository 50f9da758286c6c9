// Package readyqueue implements the transient, per-tick ordered sequence
// of ready Tasks. It does not own Tasks.
package readyqueue

import (
	"sort"

	"sched-harness/internal/task"
)

// Less compares two ready tasks under the active policy's ordering key;
// lower key sorts first (highest dispatch priority). Ties preserve
// insertion order, since Rebuild sorts with a stable sort.
type Less func(a, b *task.Task) bool

// Queue is the ReadyQueue: rebuilt from scratch on every call to Rebuild,
// never mutated in place across ticks.
type Queue struct {
	items []*task.Task
}

// Rebuild walks all tasks, keeps those with r<=0, and stable-sorts them by
// less. The queue may end up empty, which just means nothing is ready to
// run this tick.
func (q *Queue) Rebuild(all []*task.Task, less Less) {
	q.items = q.items[:0]
	for _, t := range all {
		if t.Ready() {
			q.items = append(q.items, t)
		}
	}
	sort.SliceStable(q.items, func(i, j int) bool {
		return less(q.items[i], q.items[j])
	})
}

// Len reports the number of ready tasks.
func (q *Queue) Len() int { return len(q.items) }

// Empty reports whether no task is currently ready.
func (q *Queue) Empty() bool { return len(q.items) == 0 }

// Head returns the currently-selected task (highest priority), or nil if
// the queue is empty.
func (q *Queue) Head() *task.Task {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Items returns the queue contents in dispatch order: head first, tail
// last. Callers must not retain the slice across the next Rebuild.
func (q *Queue) Items() []*task.Task { return q.items }
