// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsqueue

// copyStolenBatch transfers n tasks from src starting at position
// srcFirst into dst starting at position dstFirst. On platforms where
// hasWideCopy reports true it unrolls the loop four cells at a time,
// which keeps more of the steal's memory traffic in flight per
// iteration; the transfer is otherwise identical to four calls of
// copyStolenCell.
func copyStolenBatch(src, dst *Inner, srcFirst, dstFirst, n uint16) {
	if !hasWideCopy || n < 4 {
		for i := uint16(0); i < n; i++ {
			copyStolenCell(src, dst, srcFirst+i, dstFirst+i)
		}
		return
	}

	i := uint16(0)
	for ; i+4 <= n; i += 4 {
		copyStolenCell(src, dst, srcFirst+i, dstFirst+i)
		copyStolenCell(src, dst, srcFirst+i+1, dstFirst+i+1)
		copyStolenCell(src, dst, srcFirst+i+2, dstFirst+i+2)
		copyStolenCell(src, dst, srcFirst+i+3, dstFirst+i+3)
	}
	for ; i < n; i++ {
		copyStolenCell(src, dst, srcFirst+i, dstFirst+i)
	}
}
