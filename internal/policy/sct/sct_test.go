package sct

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"sched-harness/internal/config"
	"sched-harness/internal/readyqueue"
	"sched-harness/internal/task"
)

type stubScheduler struct {
	tasks []*task.Task
	queue readyqueue.Queue
}

func (s *stubScheduler) Tasks() []*task.Task                  { return s.tasks }
func (s *stubScheduler) Queue() *readyqueue.Queue             { return &s.queue }
func (s *stubScheduler) SetOwnSchedulingPolicy(int, int) error { return nil }
func (s *stubScheduler) Deadline(int, time.Duration) (unix.Timespec, error) {
	return unix.Timespec{}, nil
}

func TestNewIsPreemptiveNamedSCT(t *testing.T) {
	p := New(config.Default())
	if p.Name() != "SCT" {
		t.Fatalf("Name() = %q, want SCT", p.Name())
	}
	if !p.Preemptive() {
		t.Fatalf("Preemptive() = false, want true")
	}
}

func TestSCTSchedulesByAscendingCompletionTime(t *testing.T) {
	p := New(config.Default())

	t1 := task.New(0, 5, 20, 20)
	t1.SetA(1) // completion = 4
	t2 := task.New(1, 2, 10, 10)
	t2.SetA(1) // completion = 1

	s := &stubScheduler{tasks: []*task.Task{t1, t2}}
	p.Schedule(s)

	items := s.Queue().Items()
	if len(items) != 2 || items[0] != t2 || items[1] != t1 {
		t.Fatalf("expected [task1 task0] by ascending C-a")
	}
}
