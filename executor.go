// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// submitCounter picks a target worker for Submit via round robin. It
// is shared across all Executors in the process; that's fine, it only
// needs to distribute load, not be per-instance exact.
var submitCounter atomic.Uint64

// ExecutorOption configures an Executor at construction time, in the
// same functional-options shape enhanced_parallel.go's
// NewAdaptiveProcessor/NewEnhancedParallelProcessor use.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	logger              *zap.Logger
	maxConcurrentSteals int64
	queueCapacity       int
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		maxConcurrentSteals: 1,
		queueCapacity:       DefaultCapacity,
	}
}

// WithLogger attaches a zap logger the executor uses to report
// recovered task panics. Without one, the
// executor stays silent, matching the core queue's own logging-free
// hot path.
func WithLogger(l *zap.Logger) ExecutorOption {
	return func(c *executorConfig) { c.logger = l }
}

// WithMaxConcurrentSteals caps how many workers may be probing peers
// for steals at once, backpressure against a thundering herd of idle
// workers all hammering the same victim.
func WithMaxConcurrentSteals(n int64) ExecutorOption {
	return func(c *executorConfig) { c.maxConcurrentSteals = n }
}

// WithQueueCapacity overrides each worker's local ring capacity. Must
// be a power of two no larger than 256.
func WithQueueCapacity(capacity int) ExecutorOption {
	return func(c *executorConfig) { c.queueCapacity = capacity }
}

type workerHandle struct {
	id    int
	local *Producer
	steal *Stealer
	stats *WorkerStatsBatcher
	lifo  LifoSlot
}

// Executor drives a fixed pool of workers, each owning a Local/Steal
// pair, against one shared Inject queue. Its pop order per worker is
// LIFO slot, then local ring, then a steal from each peer in turn
// (starting just past itself), then a drain from inject, then parking — grounded on
// Geek0x0-pdf/optimizations_advanced.go's WorkStealingExecutor/WSWorker.run.
type Executor struct {
	workers []*workerHandle
	inject  *Inject
	cfg     executorConfig
	sem     *semaphore.Weighted

	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewExecutor builds an Executor with numWorkers worker loops sharing
// inject. It does not start any goroutines; call Start for that.
func NewExecutor(numWorkers int, inject *Inject, opts ...ExecutorOption) (*Executor, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}

	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	workers := make([]*workerHandle, numWorkers)
	for i := range workers {
		stealer, producer := newLocal(cfg.queueCapacity)
		workers[i] = &workerHandle{
			id:    i,
			local: producer,
			steal: stealer,
			stats: &WorkerStatsBatcher{},
		}
	}

	return &Executor{
		workers: workers,
		inject:  inject,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(cfg.maxConcurrentSteals),
	}, nil
}

// Submit enqueues task onto one of the executor's workers, chosen by
// a simple round robin over submission count.
func (e *Executor) Submit(task Task) {
	w := e.workers[int(submitCounter.Add(1))%len(e.workers)]
	w.local.PushBack(task, e.inject, w.stats)
}

// WorkerStats returns a snapshot of the given worker's counters.
func (e *Executor) WorkerStats(workerID int) (WorkerStats, error) {
	if workerID < 0 || workerID >= len(e.workers) {
		return WorkerStats{}, fmt.Errorf("wsqueue: worker id %d out of range", workerID)
	}
	return e.workers[workerID].stats.Snapshot(), nil
}

// Start launches one goroutine per worker under ctx. Start must be
// called at most once per Executor.
func (e *Executor) Start(ctx context.Context) error {
	if e.g != nil {
		return ErrExecutorRunning
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(e.ctx)
	e.g = g

	for _, w := range e.workers {
		w := w
		g.Go(func() error {
			e.runWorker(gctx, w)
			return nil
		})
	}
	return nil
}

// Stop cancels every worker loop, wakes any parked on inject, and
// waits for all of them to return.
func (e *Executor) Stop() error {
	if e.g == nil {
		return ErrExecutorStopped
	}
	e.cancel()
	e.inject.Close()
	return e.g.Wait()
}

func (e *Executor) runWorker(ctx context.Context, w *workerHandle) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task, ok := w.lifo.Take(); ok {
			e.execute(task, w)
			continue
		}
		if task, ok := w.local.Pop(); ok {
			e.execute(task, w)
			continue
		}
		if task, ok := e.stealFromPeer(ctx, w); ok {
			e.execute(task, w)
			continue
		}
		if task, ok := e.inject.Pop(); ok {
			e.execute(task, w)
			continue
		}

		task, ok := e.inject.PopWait()
		if !ok {
			// inject is closed and drained; nothing left to do.
			return
		}
		e.execute(task, w)
	}
}

// stealFromPeer tries every other worker once, starting just past w,
// bounding concurrent probes via e.sem.
func (e *Executor) stealFromPeer(ctx context.Context, w *workerHandle) (Task, bool) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, false
	}
	defer e.sem.Release(1)

	n := len(e.workers)
	for i := 1; i < n; i++ {
		victim := e.workers[(w.id+i)%n]
		if task, ok := victim.steal.StealInto(w.local, w.stats, victim.stats); ok {
			return task, true
		}
	}
	return nil, false
}

func (e *Executor) execute(task Task, w *workerHandle) {
	defer func() {
		if r := recover(); r != nil && e.cfg.logger != nil {
			e.cfg.logger.Error("task panicked",
				zap.Int("worker", w.id),
				zap.Any("panic", r),
			)
		}
	}()
	task.Run()
}
