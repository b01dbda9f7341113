// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsSink receives counts from the queue endpoint that owns it.
// Implementations are called only by that owning worker, the same
// single-writer contract Producer itself has.
type StatsSink interface {
	IncrOverflowCount(n uint64)
	IncrStealCount(n uint64)
}

// StatsReadonly receives a count of tasks a remote stealer took from
// this worker's queue. Unlike StatsSink, it is called concurrently by
// whichever worker happens to steal, so implementations must be safe
// for concurrent use.
type StatsReadonly interface {
	IncrStolenCount(n uint64)
}

// WorkerStats is a point-in-time snapshot of one worker's counters.
type WorkerStats struct {
	OverflowCount uint64
	StealCount    uint64
	StolenCount   uint64
}

// WorkerStatsBatcher is the zero-dependency StatsSink/StatsReadonly
// implementation: three atomic counters, grounded on
// Geek0x0-pdf/enhanced_parallel.go's WorkerPool.activeJobs/totalJobs
// atomic accounting.
type WorkerStatsBatcher struct {
	overflow atomic.Uint64
	steals   atomic.Uint64
	stolen   atomic.Uint64
}

func (w *WorkerStatsBatcher) IncrOverflowCount(n uint64) { w.overflow.Add(n) }
func (w *WorkerStatsBatcher) IncrStealCount(n uint64)    { w.steals.Add(n) }
func (w *WorkerStatsBatcher) IncrStolenCount(n uint64)   { w.stolen.Add(n) }

// Snapshot returns the current counter values.
func (w *WorkerStatsBatcher) Snapshot() WorkerStats {
	return WorkerStats{
		OverflowCount: w.overflow.Load(),
		StealCount:    w.steals.Load(),
		StolenCount:   w.stolen.Load(),
	}
}

// PromStats is a StatsSink/StatsReadonly backed by
// github.com/prometheus/client_golang counter vectors labelled by
// worker id. Neither Executor nor cmd/wsqueue-bench uses it; both
// report through WorkerStatsBatcher.
type PromStats struct {
	workerID string

	overflow *prometheus.CounterVec
	steals   *prometheus.CounterVec
	stolen   *prometheus.CounterVec
}

// NewPromStats registers (if not already registered) the three
// counter vectors on reg and returns a PromStats bound to workerID.
// Pass the same reg to successive calls to share the vectors across
// workers; each call's workerID becomes that worker's label value.
func NewPromStats(reg prometheus.Registerer, workerID int) (*PromStats, error) {
	overflow := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_overflow_total",
		Help: "Tasks migrated from a local run queue to the inject queue.",
	}, []string{"worker"})
	steals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "steal_total",
		Help: "Tasks a worker took from another worker's run queue.",
	}, []string{"worker"})
	stolen := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stolen_total",
		Help: "Tasks taken from a worker's run queue by another worker.",
	}, []string{"worker"})

	if err := reg.Register(overflow); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		overflow = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(steals); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		steals = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(stolen); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		stolen = are.ExistingCollector.(*prometheus.CounterVec)
	}

	label := strconv.Itoa(workerID)
	return &PromStats{
		workerID: label,
		overflow: overflow,
		steals:   steals,
		stolen:   stolen,
	}, nil
}

func (p *PromStats) IncrOverflowCount(n uint64) {
	p.overflow.WithLabelValues(p.workerID).Add(float64(n))
}

func (p *PromStats) IncrStealCount(n uint64) {
	p.steals.WithLabelValues(p.workerID).Add(float64(n))
}

func (p *PromStats) IncrStolenCount(n uint64) {
	p.stolen.WithLabelValues(p.workerID).Add(float64(n))
}
