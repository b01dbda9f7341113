// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wsqueue implements a bounded, lock-free, single-producer /
// multi-consumer work-stealing run queue, plus the executor, inject
// queue, and metrics collaborators a scheduler built around it needs.
package wsqueue

import (
	"fmt"
	"sync/atomic"
)

// DefaultCapacity is the production ring size: a power of two, smaller
// than the 16-bit position space by a wide enough margin that a
// producer and an in-progress steal can never confuse a wrapped
// position for a fresh one.
const DefaultCapacity = 256

func init() {
	if DefaultCapacity-1 > 0xFF {
		panic("wsqueue: DefaultCapacity-1 must fit in a byte")
	}
}

// taskCell holds one ring slot. It is plain, non-atomic storage: the
// surrounding head/tail atomics are what make reads and writes of the
// cell itself safe, exactly as the ported queue.rs relies on its
// UnsafeCell buffer being guarded by the same atomics rather than by
// per-cell synchronization.
type taskCell struct {
	task Task
}

// Inner is the ring buffer shared by a Producer/Stealer pair. A head
// word packs two 16-bit cursors: the low bits are the "real" head
// (what the next local pop consumes), the high bits are the "steal"
// head (the start of an in-progress steal batch). The two are equal
// whenever no steal is in flight. tail is written only by the
// producer and read by everyone.
type Inner struct {
	head atomic.Uint32
	tail atomic.Uint16

	mask   uint16
	buffer []taskCell
}

func pack(steal, real uint16) uint32 {
	return uint32(real) | uint32(steal)<<16
}

func unpack(n uint32) (steal, real uint16) {
	real = uint16(n)
	steal = uint16(n >> 16)
	return steal, real
}

func (in *Inner) capacity() uint16 {
	return uint16(len(in.buffer))
}

func (in *Inner) isEmpty() bool {
	_, real := unpack(in.head.Load())
	tail := in.tail.Load()
	return real == tail
}

// New builds a fresh ring at DefaultCapacity and returns its paired
// stealer and producer endpoints. Ownership of the producer endpoint
// is meant to stay with a single goroutine for its lifetime; the
// stealer endpoint is freely shared and cloned across worker
// goroutines.
func New() (*Stealer, *Producer) {
	return newLocal(DefaultCapacity)
}

// newLocal is the variable-capacity constructor behind New and
// NewExecutor's WithQueueCapacity option. It also stands in for
// tokio's loom-reduced LOCAL_QUEUE_CAPACITY, letting concurrency
// tests exercise wraparound and collision paths at a small capacity
// instead of 256.
func newLocal(capacity int) (*Stealer, *Producer) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic(fmt.Sprintf("wsqueue: capacity %d is not a power of two", capacity))
	}
	if capacity-1 > 0xFF {
		panic(fmt.Sprintf("wsqueue: capacity %d exceeds the supported range", capacity))
	}

	inner := &Inner{
		mask:   uint16(capacity - 1),
		buffer: make([]taskCell, capacity),
	}
	return &Stealer{inner: inner}, &Producer{inner: inner}
}
