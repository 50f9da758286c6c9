// Command harness is the zero-argument driver: it registers the built-in
// task sets and the three policies, runs every (policy, set) pairing for
// a bounded wall-clock budget, and prints one
// "[ ALGO a TEST SET s PASS|FAIL ]" line per pairing. Exit status is 0 on
// normal completion regardless of individual PASS/FAIL outcomes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"sched-harness/internal/config"
	"sched-harness/internal/harness"
	"sched-harness/internal/policy/edf"
	"sched-harness/internal/policy/rma"
	"sched-harness/internal/policy/sct"
	"sched-harness/internal/registry"
	"sched-harness/internal/timing"
	"sched-harness/internal/trace"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config overriding harness defaults")
	tracePath := flag.String("trace", "", "optional CSV trace output path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("harness: load config")
	}

	tm := timing.New().WithQuantum(cfg.Quantum())
	if err := tm.Calibrate(); err != nil {
		logrus.WithError(err).Fatal("harness: calibration failed")
	}

	sink := trace.NewCSVSink(*tracePath)
	defer sink.Close()

	reg := registry.New(10 * time.Minute)
	defer reg.Close()

	h := harness.New(cfg, tm, sink, reg)
	h.AddPolicy(rma.New())
	h.AddPolicy(edf.New(cfg))
	h.AddPolicy(sct.New(cfg))

	sets, err := harness.DefaultTaskSets()
	if err != nil {
		logrus.WithError(err).Fatal("harness: build default task sets")
	}
	for _, ts := range sets {
		h.AddTaskSet(ts)
	}

	start := time.Now()
	lines := h.Run()
	for _, l := range lines {
		fmt.Println(l.String())
	}

	logrus.WithField("elapsed", units.HumanDuration(time.Since(start))).Info("harness: run complete")
	os.Exit(0)
}
