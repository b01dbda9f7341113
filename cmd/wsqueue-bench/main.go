// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wsqueue-bench drives an Executor under synthetic load and
// reports per-worker run-queue statistics.
package main

import (
	"context"
	"flag"
	"log"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ringforge/wsqueue"
)

func main() {
	workers := flag.Int("workers", 4, "number of worker goroutines")
	tasks := flag.Int("tasks", 100000, "number of synthetic tasks to submit")
	duration := flag.Duration("duration", 5*time.Second, "how long to let workers drain before stopping")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("wsqueue-bench: building logger: %v", err)
	}
	defer logger.Sync()

	inject := wsqueue.NewInject()
	exec, err := wsqueue.NewExecutor(*workers, inject,
		wsqueue.WithLogger(logger),
		wsqueue.WithMaxConcurrentSteals(int64(*workers)),
	)
	if err != nil {
		logger.Fatal("building executor", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := exec.Start(ctx); err != nil {
		logger.Fatal("starting executor", zap.Error(err))
	}

	var completed atomic.Int64
	for i := 0; i < *tasks; i++ {
		exec.Submit(wsqueue.TaskFunc(func() {
			completed.Add(1)
		}))
	}

	timer := time.NewTimer(*duration)
	defer timer.Stop()
	<-timer.C

	if err := exec.Stop(); err != nil {
		logger.Error("stopping executor", zap.Error(err))
	}

	for id := 0; id < *workers; id++ {
		stats, err := exec.WorkerStats(id)
		if err != nil {
			continue
		}
		logger.Info("worker stats",
			zap.Int("worker", id),
			zap.Uint64("overflow", stats.OverflowCount),
			zap.Uint64("stole", stats.StealCount),
			zap.Uint64("stolen_from", stats.StolenCount),
		)
	}
	logger.Info("run complete", zap.Int64("tasks_completed", completed.Load()))
}
