// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build arm64

package wsqueue

import "golang.org/x/sys/cpu"

// hasWideCopy gates the unrolled batch-copy path on ARM64's SIMD unit.
var hasWideCopy = cpu.ARM64.HasASIMD
