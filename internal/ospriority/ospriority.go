//go:build linux

// Package ospriority wraps the handful of Linux scheduling syscalls the
// priority-piloting trick needs: sched_setscheduler/sched_setparam to give
// a thread a FIFO-class kernel policy and priority, and sched_setaffinity
// to pin every thread to one CPU so the single-CPU simulation holds even
// on multi-core hosts. golang.org/x/sys/unix supplies the syscall numbers
// and the Gettid/affinity wrappers; sched_setscheduler and sched_setparam
// have no typed wrapper there, so they are issued as raw syscalls against
// the kernel ABI below.
package ospriority

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Kernel scheduling policy codes (linux/sched.h); stable across arches.
const (
	SchedOther = 0
	SchedFIFO  = 1
	SchedRR    = 2
)

// schedParam mirrors struct sched_param from <sched.h>: a single int on
// every Linux ABI this module targets.
type schedParam struct {
	priority int32
}

// Gettid returns the calling OS thread's kernel id. Must be called after
// runtime.LockOSThread from the goroutine whose thread is being piloted.
func Gettid() int { return unix.Gettid() }

// SetScheduler sets tid's kernel scheduling policy and priority.
func SetScheduler(tid, policy, priority int) error {
	sp := schedParam{priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, uintptr(tid), uintptr(policy), uintptr(unsafe.Pointer(&sp)))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetParam changes tid's priority without touching its scheduling policy;
// used every tick to re-pilot dispatch order.
func SetParam(tid, priority int) error {
	sp := schedParam{priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETPARAM, uintptr(tid), uintptr(unsafe.Pointer(&sp)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// PinToCPU restricts tid to a single CPU, so the supervisor and its
// workers all compete for dispatch on one core instead of running truly
// in parallel across several.
func PinToCPU(tid, cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(tid, &set)
}
