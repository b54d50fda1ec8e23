// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cas implements the weak-CAS shim that mcslock and ticket build
// on: compare-and-set and compare-and-exchange at a requested memory
// ordering, with the guarantee that on weakly-ordered architectures a
// spurious CAS failure is retried with an opaque reload of the location,
// and on strongly-ordered architectures a single CAS is used.
//
// Go's sync/atomic primitives never fail spuriously — there is no weak
// compare-and-swap in the language the way there is in C++ or Java's
// VarHandle. The retry loop below therefore never absorbs a spurious
// failure; on weakly-ordered architectures it is entered only when the
// reload after a failed CAS finds old back in the location (the value
// changed and changed back), and it then simply tries the CAS again. On
// strongly-ordered architectures the loop is skipped entirely. See
// archflag for the one-time "is this arch weak" flag.
package cas

import (
	"sync/atomic"

	"github.com/skylarkarms/mcs-go/internal/archflag"
)

// Ordering names the memory ordering a caller is requesting. Go's atomic
// package offers no separate instruction per ordering (every atomic op is
// sequentially consistent), so Ordering is carried purely as an intent
// tag: it documents at the call site what happens-before relationship the
// caller is relying on, and it is threaded through so a future
// ordering-aware backend has a natural hook.
type Ordering int

const (
	Plain Ordering = iota
	Acquire
	Release
	SeqCst
)

// CAS32 attempts old -> new at addr. It returns true if *addr held old and
// was updated to new.
func CAS32(addr *uint32, old, new uint32, _ Ordering) bool {
	if atomic.CompareAndSwapUint32(addr, old, new) {
		return true
	}
	if !archflag.Weak() {
		return false
	}
	obs := atomic.LoadUint32(addr) // opaque reload
	for obs == old {
		if atomic.CompareAndSwapUint32(addr, old, new) {
			return true
		}
		obs = atomic.LoadUint32(addr)
	}
	return false
}

// Xchg32 attempts old -> new at addr. On success it returns (old, true);
// on failure it returns the value last loaded from addr after the failed
// attempt and false.
func Xchg32(addr *uint32, old, new uint32, _ Ordering) (witness uint32, ok bool) {
	if atomic.CompareAndSwapUint32(addr, old, new) {
		return old, true
	}
	if !archflag.Weak() {
		return atomic.LoadUint32(addr), false
	}
	obs := atomic.LoadUint32(addr)
	for obs == old {
		if atomic.CompareAndSwapUint32(addr, old, new) {
			return old, true
		}
		obs = atomic.LoadUint32(addr)
	}
	return obs, false
}

// CAS64 is the uint64 analogue of CAS32.
func CAS64(addr *uint64, old, new uint64, _ Ordering) bool {
	if atomic.CompareAndSwapUint64(addr, old, new) {
		return true
	}
	if !archflag.Weak() {
		return false
	}
	obs := atomic.LoadUint64(addr)
	for obs == old {
		if atomic.CompareAndSwapUint64(addr, old, new) {
			return true
		}
		obs = atomic.LoadUint64(addr)
	}
	return false
}

// Xchg64 is the uint64 analogue of Xchg32.
func Xchg64(addr *uint64, old, new uint64, _ Ordering) (witness uint64, ok bool) {
	if atomic.CompareAndSwapUint64(addr, old, new) {
		return old, true
	}
	if !archflag.Weak() {
		return atomic.LoadUint64(addr), false
	}
	obs := atomic.LoadUint64(addr)
	for obs == old {
		if atomic.CompareAndSwapUint64(addr, old, new) {
			return old, true
		}
		obs = atomic.LoadUint64(addr)
	}
	return obs, false
}
