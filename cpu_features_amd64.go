// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package wsqueue

import "golang.org/x/sys/cpu"

// hasWideCopy mirrors Geek0x0-pdf/simsys_amd64.go's hasAVX2 probe: on
// amd64, AVX2 implies the CPU can sustain a wider unrolled copy
// without stalling on load/store ports.
var hasWideCopy = cpu.X86.HasAVX2
