// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build mcslockdebug

package mcslock

import (
	"sync/atomic"

	"github.com/skylarkarms/mcs-go/internal/vlog"
)

// assertHeldForUnlock is a debug-only assertion, enabled by building with
// -tags mcslockdebug. It turns a double-release or release-without-
// acquire into a logged, deterministic panic instead of corrupting busy.
func assertHeldForUnlock(m *Mutex) {
	if atomic.LoadUint32(&m.busy) == 0 {
		vlog.Log.Panicf("mcslock: Unlock called on a Mutex that is not held")
	}
}
