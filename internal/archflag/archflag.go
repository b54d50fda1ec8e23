// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archflag is the minimal caller-side stand-in for the
// architecture-detection layer, which is a separate, out-of-scope
// collaborator. Its only contract is: given the target architecture, say
// whether it is weakly ordered. Weak computes the answer once and caches
// it; the cas package calls Weak after each failed CAS and gets the
// cached value.
package archflag

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/skylarkarms/mcs-go/internal/vlog"
)

// weakArches lists GOARCH values that do not provide total-store-order
// semantics for plain loads/stores, and therefore need the cas package's
// opaque-reload retry path rather than a single strong instruction.
var weakArches = map[string]bool{
	"arm":      true,
	"arm64":    true,
	"riscv64":  true,
	"ppc64":    true,
	"ppc64le":  true,
	"mips":     true,
	"mipsle":   true,
	"mips64":   true,
	"mips64le": true,
}

var (
	once   sync.Once
	isWeak bool
)

// Weak reports whether the running architecture is weakly ordered. The
// result is computed once per process and cached; every subsequent call
// returns the cached value.
func Weak() bool {
	once.Do(func() {
		isWeak = weakArches[runtime.GOARCH]
		// x/sys/cpu exposes instruction-set feature bits, not memory
		// ordering, so it cannot override the static table above; it is
		// consulted only to confirm the detector actually ran on this
		// build (cpu.Initialized is false on architectures x/sys/cpu does
		// not recognize at all, which is itself informative).
		if !cpu.Initialized {
			vlog.Log.V(1).Infof("archflag: cpu feature detection unavailable for %s, using static table only", runtime.GOARCH)
		}
		vlog.Log.V(1).Infof("archflag: %s classified as weak=%v", runtime.GOARCH, isWeak)
	})
	return isWeak
}
