// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInjectPushPopFIFO(t *testing.T) {
	q := NewInject()
	q.Push(idTask(1))
	q.Push(idTask(2))
	q.Push(idTask(3))

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, idTask(want), got)
	}
	_, ok := q.Pop()
	require.False(t, ok)
}

func TestInjectPushSliceAndPopN(t *testing.T) {
	q := NewInject()
	q.PushSlice([]Task{idTask(1), idTask(2), idTask(3), idTask(4)})
	require.Equal(t, 4, q.Len())

	got := q.PopN(2)
	require.Len(t, got, 2)
	require.Equal(t, idTask(1), got[0])
	require.Equal(t, idTask(2), got[1])
	require.Equal(t, 2, q.Len())

	got = q.PopN(10)
	require.Len(t, got, 2)
}

func TestInjectPopWaitBlocksUntilPush(t *testing.T) {
	q := NewInject()
	done := make(chan Task, 1)
	go func() {
		task, ok := q.PopWait()
		if ok {
			done <- task
		}
	}()

	select {
	case <-done:
		t.Fatal("PopWait returned before any task was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push(idTask(42))
	select {
	case got := <-done:
		require.Equal(t, idTask(42), got)
	case <-time.After(time.Second):
		t.Fatal("PopWait never returned after Push")
	}
}

func TestInjectPopWaitUnblocksOnClose(t *testing.T) {
	q := NewInject()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.PopWait()
		done <- ok
	}()

	q.Close()
	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("PopWait never returned after Close")
	}
}

func TestInjectConcurrentPushPop(t *testing.T) {
	q := NewInject()
	const n = 1000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Push(idTask(i))
		}(i)
	}
	wg.Wait()
	require.Equal(t, n, q.Len())

	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		task, ok := q.Pop()
		require.True(t, ok)
		seen[int(task.(idTask))] = true
	}
	require.Len(t, seen, n)
}
