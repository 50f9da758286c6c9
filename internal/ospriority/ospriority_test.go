//go:build linux

package ospriority

import "testing"

func TestGettidIsPositive(t *testing.T) {
	if tid := Gettid(); tid <= 0 {
		t.Fatalf("Gettid() = %d, want >0", tid)
	}
}

func TestSetParamOnCurrentThread(t *testing.T) {
	tid := Gettid()
	// SCHED_OTHER only accepts priority 0; this just exercises the
	// syscall wiring, not the full FIFO-piloting path (that needs
	// CAP_SYS_NICE and is exercised end-to-end by the harness test,
	// whose Scheduler.Init and Task.Start tolerate EPERM).
	if err := SetParam(tid, 0); err != nil {
		t.Logf("SetParam on current (default) policy: %v (acceptable on a locked-down host)", err)
	}
}

func TestPinToCPU0(t *testing.T) {
	tid := Gettid()
	if err := PinToCPU(tid, 0); err != nil {
		t.Logf("PinToCPU: %v (acceptable if the host restricts affinity changes)", err)
	}
}
