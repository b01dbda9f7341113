// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import (
	"errors"
	"testing"
)

func TestQueueErrorUnwrap(t *testing.T) {
	inner := ErrInjectClosed
	qerr := &QueueError{Op: "pop", WorkerID: 3, Err: inner}

	if !errors.Is(qerr, ErrInjectClosed) {
		t.Fatal("errors.Is should see through QueueError to the wrapped sentinel")
	}

	want := "wsqueue: pop (worker 3): wsqueue: inject queue is closed"
	if qerr.Error() != want {
		t.Fatalf("Error() = %q, want %q", qerr.Error(), want)
	}
}

func TestQueueErrorWithoutWorkerID(t *testing.T) {
	qerr := &QueueError{Op: "configure", WorkerID: -1, Err: ErrNoWorkers}
	want := "wsqueue: configure: wsqueue: executor requires at least one worker"
	if qerr.Error() != want {
		t.Fatalf("Error() = %q, want %q", qerr.Error(), want)
	}
}
