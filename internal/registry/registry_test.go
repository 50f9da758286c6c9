package registry

import (
	"testing"
	"time"
)

func TestPutAndGet(t *testing.T) {
	r := New(time.Minute)
	defer r.Close()

	r.Put(Record{PolicyIndex: 0, SetIndex: 2, PolicyName: "RMA", SetName: "single-task", Verdict: Pass, Ticks: 42})

	rec, ok := r.Get(0, 2)
	if !ok {
		t.Fatalf("Get(0,2) missing record")
	}
	if rec.Verdict != Pass || rec.Ticks != 42 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.EndedAt.IsZero() {
		t.Fatalf("EndedAt not stamped by Put")
	}
}

func TestGetMissing(t *testing.T) {
	r := New(time.Minute)
	defer r.Close()

	if _, ok := r.Get(9, 9); ok {
		t.Fatalf("Get on empty registry should report false")
	}
}

func TestAllSnapshotsEveryRecord(t *testing.T) {
	r := New(time.Minute)
	defer r.Close()

	r.Put(Record{PolicyIndex: 0, SetIndex: 0, Verdict: Pass})
	r.Put(Record{PolicyIndex: 1, SetIndex: 0, Verdict: Fail})

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d records, want 2", len(all))
	}
}

func TestCleanupExpiresOldRecords(t *testing.T) {
	r := New(time.Minute)
	defer r.Close()

	r.Put(Record{PolicyIndex: 0, SetIndex: 0, Verdict: Pass})
	r.mu.Lock()
	for _, rec := range r.records {
		rec.EndedAt = time.Now().Add(-2 * time.Minute)
	}
	r.mu.Unlock()

	r.cleanup()

	if _, ok := r.Get(0, 0); ok {
		t.Fatalf("cleanup should have evicted the stale record")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r := New(time.Minute)
	r.Close()
	r.Close()
}
