// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import "fmt"

// Producer is the single-owner producer/consumer endpoint of a local
// run queue. Exactly one goroutine may hold and call a given Producer
// at a time; it is not safe to share across goroutines the way
// Stealer is.
type Producer struct {
	inner *Inner
}

// IsEmpty reports whether the queue currently holds no tasks.
func (p *Producer) IsEmpty() bool { return p.inner.isEmpty() }

// HasTasks reports whether the queue currently holds at least one task.
func (p *Producer) HasTasks() bool { return !p.inner.isEmpty() }

// IsStealable reports whether a stealer could currently take work from
// this queue. For the producer side this is equivalent to HasTasks;
// Stealer.IsEmpty performs the same check from the other endpoint.
func (p *Producer) IsStealable() bool { return !p.inner.isEmpty() }

// PushBack enqueues task at the tail of the local ring. If the ring is
// full, half of it (plus the new task) is migrated to inject as a
// single batch and stats records the overflow; if another stealer is
// mid-batch and the ring merely looks full from the producer's own
// read, the new task goes straight to inject instead of retrying
// indefinitely.
func (p *Producer) PushBack(task Task, inject *Inject, stats StatsSink) {
	in := p.inner

	var tail uint16
	for {
		head := in.head.Load()
		steal, real := unpack(head)
		tail = in.tail.Load()

		if tail-steal < in.capacity() {
			// Room in the ring (from the producer's perspective).
			break
		}

		if steal != real {
			// The ring is full only because a steal is in flight;
			// don't spin waiting for it, just overflow this one task.
			inject.Push(task)
			stats.IncrOverflowCount(1)
			return
		}

		ok, remaining := p.pushOverflow(task, real, tail, inject, stats)
		if ok {
			return
		}
		task = remaining
	}

	idx := tail & in.mask
	in.buffer[idx].task = task
	in.tail.Store(tail + 1)
}

// pushOverflow claims half of a full ring via CAS and migrates it,
// plus task, to inject as one batch. It returns false (with task
// unchanged) if the CAS on head fails because a stealer changed it
// concurrently — callers retry PushBack's outer loop in that case,
// exactly as queue.rs's push_overflow does on a failed
// compare_exchange.
func (p *Producer) pushOverflow(task Task, head, tail uint16, inject *Inject, stats StatsSink) (bool, Task) {
	in := p.inner

	if tail-head != in.capacity() {
		panic(fmt.Sprintf("wsqueue: push_overflow called on a non-full ring (tail=%d head=%d)", tail, head))
	}

	numTaken := in.capacity() / 2
	prev := pack(head, head)
	next := pack(head+numTaken, head+numTaken)

	if !in.head.CompareAndSwap(prev, next) {
		return false, task
	}

	batch := newOverflowBatch(in, head, numTaken, task)
	inject.PushBatch(batch)
	stats.IncrOverflowCount(uint64(numTaken) + 1)
	return true, nil
}

// Pop removes and returns the task at the real head, or (nil, false)
// if the queue is empty. It never observes a task a concurrent steal
// has already claimed: the CAS only succeeds when advancing the real
// head would not cross into the stealer's claimed range.
func (p *Producer) Pop() (Task, bool) {
	in := p.inner

	head := in.head.Load()
	var idx uint16
	for {
		steal, real := unpack(head)
		tail := in.tail.Load()

		if real == tail {
			return nil, false
		}

		nextReal := real + 1

		var next uint32
		if steal == real {
			next = pack(nextReal, nextReal)
		} else {
			if steal == nextReal {
				panic("wsqueue: local pop would collide with an in-progress steal")
			}
			next = pack(steal, nextReal)
		}

		if in.head.CompareAndSwap(head, next) {
			idx = real & in.mask
			break
		}
		head = in.head.Load()
	}

	cell := &in.buffer[idx]
	task := cell.task
	cell.task = nil
	return task, true
}

// Close asserts the queue is empty, matching queue.rs's Drop impl for
// Local. Call it deferred by the owning goroutine when it is done with
// the producer endpoint. If called while a panic is already
// unwinding, the assertion is skipped and the panic re-raised
// unmasked.
func (p *Producer) Close() {
	if rec := recover(); rec != nil {
		panic(rec)
	}
	if task, ok := p.Pop(); ok {
		panic(fmt.Sprintf("wsqueue: producer closed with queue not empty (found a task: %v)", task))
	}
}
