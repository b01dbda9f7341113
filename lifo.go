// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import "sync/atomic"

// LifoSlot is a single-task fast path a worker keeps beside its local
// ring. A task placed there runs next, ahead of anything already in
// the ring, on the theory that whatever a task just woke up is likely
// to be cache-hot and worth running immediately rather than queued
// fairly behind older work. It is maintained separately from Inner by
// design, not pushed through PushBack.
type LifoSlot struct {
	slot atomic.Pointer[Task]
}

// Swap stores task in the slot and returns whatever was there before
// (ok is false if the slot was empty).
func (l *LifoSlot) Swap(task Task) (Task, bool) {
	var next *Task
	if task != nil {
		t := task
		next = &t
	}
	prev := l.slot.Swap(next)
	if prev == nil {
		return nil, false
	}
	return *prev, true
}

// Take removes and returns whatever is in the slot, if anything.
func (l *LifoSlot) Take() (Task, bool) {
	prev := l.slot.Swap(nil)
	if prev == nil {
		return nil, false
	}
	return *prev, true
}

// Occupied reports whether the slot currently holds a task.
func (l *LifoSlot) Occupied() bool {
	return l.slot.Load() != nil
}
