// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import "testing"

type idTask int

func (idTask) Run() {}

func TestPushBackPopIsFIFO(t *testing.T) {
	_, p := newLocal(4)
	inject := NewInject()
	stats := &WorkerStatsBatcher{}

	for i := 0; i < 4; i++ {
		p.PushBack(idTask(i), inject, stats)
	}

	for want := 0; want < 4; want++ {
		got, ok := p.Pop()
		if !ok {
			t.Fatalf("Pop() returned false at index %d, wanted task %d", want, want)
		}
		if got.(idTask) != idTask(want) {
			t.Fatalf("Pop() = %v, want %v", got, idTask(want))
		}
	}

	if _, ok := p.Pop(); ok {
		t.Fatal("Pop() on an empty queue returned a task")
	}
	if inject.Len() != 0 {
		t.Fatalf("inject.Len() = %d, want 0 (no overflow should have happened)", inject.Len())
	}
}

func TestPushBackOverflowsWhenFull(t *testing.T) {
	_, p := newLocal(4)
	inject := NewInject()
	stats := &WorkerStatsBatcher{}

	for i := 0; i < 4; i++ {
		p.PushBack(idTask(i), inject, stats)
	}
	// The 5th push finds the ring full (4/4) and must overflow half
	// the ring (2 tasks) plus itself (1 task) = 3 tasks to inject.
	p.PushBack(idTask(4), inject, stats)

	if inject.Len() != 3 {
		t.Fatalf("inject.Len() = %d, want 3", inject.Len())
	}
	snap := stats.Snapshot()
	if snap.OverflowCount != 3 {
		t.Fatalf("OverflowCount = %d, want 3", snap.OverflowCount)
	}

	// The first two tasks (0, 1) were migrated to inject in FIFO order,
	// followed by the new task (4); tasks 2 and 3 remain in the ring.
	wantInject := []int{0, 1, 4}
	for _, want := range wantInject {
		got, ok := inject.Pop()
		if !ok {
			t.Fatalf("inject.Pop() returned false, wanted task %d", want)
		}
		if got.(idTask) != idTask(want) {
			t.Fatalf("inject.Pop() = %v, want %v", got, idTask(want))
		}
	}

	for _, want := range []int{2, 3} {
		got, ok := p.Pop()
		if !ok {
			t.Fatalf("Pop() returned false, wanted remaining task %d", want)
		}
		if got.(idTask) != idTask(want) {
			t.Fatalf("Pop() = %v, want %v", got, idTask(want))
		}
	}
}

func TestProducerCloseAssertsEmpty(t *testing.T) {
	_, p := newLocal(4)
	p.PushBack(idTask(0), NewInject(), &WorkerStatsBatcher{})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Close to panic on a non-empty queue")
		}
	}()
	p.Close()
}

func TestProducerCloseOnEmptyQueueIsSilent(t *testing.T) {
	_, p := newLocal(4)
	p.Close()
}

func TestProducerClosePreservesInFlightPanic(t *testing.T) {
	_, p := newLocal(4)
	p.PushBack(idTask(0), NewInject(), &WorkerStatsBatcher{})

	run := func() (panicked any) {
		defer func() { panicked = recover() }()
		defer p.Close()
		panic("original failure")
	}

	got := run()
	if got != "original failure" {
		t.Fatalf("recovered panic = %v, want original failure to propagate unmasked", got)
	}
}
