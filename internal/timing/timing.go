// Package timing implements quantum calibration, the uninterruptible
// CPU-burn primitive, and monotonic absolute-deadline arithmetic for the
// preemptive policies' timed waits.
package timing

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/mackerelio/go-osstat/cpu"
	"github.com/sirupsen/logrus"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/sys/unix"

	"sched-harness/internal/ospriority"
)

// CalibrationFailed is returned when the calibration loop cannot converge
// within its tolerance. This is fatal for the whole program, since every
// (policy,set) pair shares the one calibrated quantum.
var CalibrationFailed = errors.New("timing: calibration failed to converge")

const (
	calibrationTolerance = 0.05 // +-5% relative to the previous round's cost
	calibrationMinSamples = 5
	calibrationMaxRounds  = 20
	calibrationIterBase   = 1_000_000
)

// Timing is the calibrated quantum clock shared by the Scheduler core and
// every Task's worker loop.
type Timing struct {
	quantum time.Duration // wall-clock duration of one quantum, post-calibration
	iters   int64         // busy-loop iterations measured to cost one quantum

	log *logrus.Entry

	sink atomic.Int64 // prevents the compiler from folding the burn loop away
}

// New returns an uncalibrated Timing; call Calibrate before SpinFor.
func New() *Timing {
	return &Timing{
		quantum: 10 * time.Millisecond, // default quantum, overridable via WithQuantum
		log:     logrus.WithField("comp", "timing"),
	}
}

// WithQuantum overrides the default QUANTUM_MS, e.g. from config.
func (tm *Timing) WithQuantum(d time.Duration) *Timing {
	tm.quantum = d
	return tm
}

// Calibrate makes one SpinFor(1) call consume approximately tm.quantum of
// wall-clock CPU. It raises its own OS thread priority while calibrating,
// then iterates, growing the working iteration count and timing it, until
// the measured per-iteration cost across calibrationMinSamples consecutive
// rounds agrees within calibrationTolerance — converging on an iteration
// count instead of assuming a fixed one, since burn cost varies by host.
func (tm *Timing) Calibrate() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := ospriority.Gettid()
	if err := ospriority.SetScheduler(tid, ospriority.SchedFIFO, 1); err != nil {
		tm.log.WithError(err).Warn("calibration: could not raise scheduling policy, continuing at default priority")
	}

	if tck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && tck > 0 {
		tm.log.WithField("clk_tck", tck).Debug("host clock tick rate")
	}

	if stat, err := cpu.Get(); err == nil {
		tm.log.WithFields(logrus.Fields{
			"cpu_total": stat.Total,
			"cpu_idle":  stat.Idle,
		}).Debug("host CPU snapshot before calibration")
	}

	iters := int64(calibrationIterBase)
	var lastCost float64
	converged := 0

	for round := 0; round < calibrationMaxRounds; round++ {
		start := time.Now()
		tm.burn(iters)
		elapsed := time.Since(start)

		costPerIter := float64(elapsed) / float64(iters)
		if lastCost > 0 {
			rel := (costPerIter - lastCost) / lastCost
			if rel < 0 {
				rel = -rel
			}
			if rel <= calibrationTolerance {
				converged++
				if converged >= calibrationMinSamples {
					tm.iters = int64(float64(tm.quantum) / costPerIter)
					if tm.iters < 1 {
						tm.iters = 1
					}
					tm.log.WithFields(logrus.Fields{
						"iters_per_quantum": tm.iters,
						"rounds":            round + 1,
					}).Info("quantum calibration converged")
					return nil
				}
			} else {
				converged = 0
			}
		}
		lastCost = costPerIter

		// Re-derive the next round's iteration count from the current
		// estimate so later rounds burn roughly one quantum each,
		// matching the convergence loop's own feedback shape.
		if costPerIter > 0 {
			next := int64(float64(tm.quantum) / costPerIter)
			if next > iters {
				iters = next
			}
		}
	}

	return fmt.Errorf("%w: after %d rounds, last cost/iter=%.2fns", CalibrationFailed, calibrationMaxRounds, lastCost)
}

// SpinFor busy-burns n quanta of CPU. The loop's accumulator is stored
// into an atomic field at the end so the compiler cannot optimize the
// burn away.
func (tm *Timing) SpinFor(nQuanta int) {
	if nQuanta <= 0 {
		return
	}
	tm.burn(tm.iters * int64(nQuanta))
}

func (tm *Timing) burn(iterations int64) {
	var acc int64
	for i := int64(0); i < iterations; i++ {
		acc += i ^ (i >> 1)
	}
	tm.sink.Store(acc)
}

// AbstimeInQuanta returns now + n*quantum + jitter, normalized against the
// host monotonic clock, for use as an absolute timed-wait deadline.
func (tm *Timing) AbstimeInQuanta(nQuanta int, jitter time.Duration) (unix.Timespec, error) {
	var now unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &now); err != nil {
		return unix.Timespec{}, fmt.Errorf("%w: clock_gettime: %v", CalibrationFailed, err)
	}
	offset := time.Duration(nQuanta)*tm.quantum + jitter
	ns := now.Nano() + offset.Nanoseconds()
	return unix.NsecToTimespec(ns), nil
}

// TimespecSub computes x-y, reporting whether the result is negative.
func TimespecSub(x, y unix.Timespec) (unix.Timespec, bool) {
	diff := x.Nano() - y.Nano()
	return unix.NsecToTimespec(diff), diff < 0
}
