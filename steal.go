// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

import "fmt"

// Stealer is the shared, freely-cloneable stealer endpoint of a local
// run queue. Many goroutines may hold a Stealer for the same queue at
// once; only one of them can be mid-batch-steal at any instant, which
// StealInto enforces internally via CAS, not via a lock.
type Stealer struct {
	inner *Inner
}

// Clone returns an equivalent Stealer. Since Stealer is already a
// thin, comparable wrapper around a shared *Inner, this is just a
// value copy; the method exists so callers used to the explicit-clone
// idiom this queue is ported from have a direct equivalent.
func (s Stealer) Clone() Stealer { return s }

// IsEmpty reports whether the source queue currently holds no tasks.
func (s Stealer) IsEmpty() bool { return s.inner.isEmpty() }

// StealInto takes roughly half of s's available tasks and transfers
// them into dst, returning one of them to run immediately (the rest
// are left sitting in dst's ring). It returns (nil, false) if there
// was nothing worth stealing, including when dst is already more than
// half full — stealing into an already-busy queue is refused rather
// than attempted partially, per the conservative capacity-bound check.
func (s Stealer) StealInto(dst *Producer, dstStats StatsSink, srcStats StatsReadonly) (Task, bool) {
	dstTail := dst.inner.tail.Load()
	dstSteal, _ := unpack(dst.inner.head.Load())

	if dstTail-dstSteal > dst.inner.capacity()/2 {
		// dst already holds more than half its capacity (counted from
		// its steal head); refuse rather than steal a smaller batch.
		return nil, false
	}

	n := s.stealInto2(dst, dstTail)
	if n == 0 {
		return nil, false
	}

	dstStats.IncrStealCount(uint64(n))
	srcStats.IncrStolenCount(uint64(n))

	n--
	retIdx := (dstTail + n) & dst.inner.mask
	cell := &dst.inner.buffer[retIdx]
	ret := cell.task
	cell.task = nil

	if n > 0 {
		dst.inner.tail.Store(dstTail + n)
	}
	return ret, true
}

// stealInto2 runs the three-phase claim/transfer/release protocol:
// claim a contiguous range of the source ring by advancing only its
// real cursor (leaving the steal cursor at the start of the claimed
// range, so local pop and other stealers see a steal in progress and
// stay out of it), copy the claimed tasks into dst starting at
// dstTail, then release the claim by moving the steal cursor up to
// the real cursor. It returns the number of tasks
// transferred (0 if there was nothing worth stealing).
func (s Stealer) stealInto2(dst *Producer, dstTail uint16) uint16 {
	in := s.inner

	prevPacked := in.head.Load()
	var n uint16
	var nextPacked uint32
	for {
		srcSteal, srcReal := unpack(prevPacked)
		srcTail := in.tail.Load()

		if srcSteal != srcReal {
			// Someone else is already mid-steal on this source.
			return 0
		}

		avail := srcTail - srcReal
		n = avail - avail/2
		if n == 0 {
			return 0
		}

		stealTo := srcReal + n
		if srcSteal == stealTo {
			panic("wsqueue: steal batch would collapse the in-progress marker")
		}

		nextPacked = pack(srcSteal, stealTo)
		if in.head.CompareAndSwap(prevPacked, nextPacked) {
			break
		}
		prevPacked = in.head.Load()
	}

	if n > in.capacity()/2 {
		panic(fmt.Sprintf("wsqueue: stole %d tasks, more than half the source capacity", n))
	}

	first, _ := unpack(nextPacked)
	copyStolenBatch(in, dst.inner, first, dstTail, n)

	prev := nextPacked
	for {
		_, head := unpack(prev)
		next := pack(head, head)
		if in.head.CompareAndSwap(prev, next) {
			return n
		}

		actual := in.head.Load()
		actualSteal, actualReal := unpack(actual)
		if actualSteal == actualReal {
			panic("wsqueue: in-progress steal marker was cleared by someone else")
		}
		prev = actual
	}
}

// copyStolenCell moves one task from src at source position srcPos
// into dst at destination position dstPos.
func copyStolenCell(src, dst *Inner, srcPos, dstPos uint16) {
	srcCell := &src.buffer[srcPos&src.mask]
	dstCell := &dst.buffer[dstPos&dst.mask]
	dstCell.task = srcCell.task
	srcCell.task = nil
}
