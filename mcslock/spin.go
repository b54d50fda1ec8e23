// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcslock

import "runtime"

// spinDelay backs off a caller stuck in a retry loop: it busy-spins a
// small, growing number of iterations for the first several calls, then
// falls back to runtime.Gosched so the scheduler can run something else
// while the contended location is held elsewhere. Call it with the
// count it last returned:
//
//	var attempts uint
//	for !done() {
//	    attempts = spinDelay(attempts)
//	}
//
// This is the same backoff shape nsync's spin-based primitives use
// (see vanadium-go.lib/nsync/common.go), adopted here for mcslock's
// own CAS retry loops. The ticket package does not use it; it has its
// own distance-based spin/yield loop.
func spinDelay(attempts uint) uint {
	if attempts < 7 {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}
