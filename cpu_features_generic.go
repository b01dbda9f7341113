// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64

package wsqueue

// hasWideCopy is false on platforms without a probed wide-copy path;
// copyStolenBatch falls back to its scalar loop.
var hasWideCopy = false
