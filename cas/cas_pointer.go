// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cas

import (
	"sync/atomic"

	"github.com/skylarkarms/mcs-go/internal/archflag"
)

// Pointer wraps atomic.Pointer[T] with CAS/Xchg following the §4.1
// algorithm, generic over the pointee type. It is used by mcslock for
// the tail and node.next slots, which are all *node.
type Pointer[T any] struct {
	v atomic.Pointer[T]
}

// CAS attempts old -> new. Returns true on success.
func (p *Pointer[T]) CAS(old, new *T, _ Ordering) bool {
	if p.v.CompareAndSwap(old, new) {
		return true
	}
	if !archflag.Weak() {
		return false
	}
	obs := p.v.Load()
	for obs == old {
		if p.v.CompareAndSwap(old, new) {
			return true
		}
		obs = p.v.Load()
	}
	return false
}

// Xchg attempts old -> new. On success it returns (old, true); on failure
// it returns the value last loaded after the failed attempt and false.
func (p *Pointer[T]) Xchg(old, new *T, _ Ordering) (witness *T, ok bool) {
	if p.v.CompareAndSwap(old, new) {
		return old, true
	}
	if !archflag.Weak() {
		return p.v.Load(), false
	}
	obs := p.v.Load()
	for obs == old {
		if p.v.CompareAndSwap(old, new) {
			return old, true
		}
		obs = p.v.Load()
	}
	return obs, false
}

// Load performs an opaque load of the pointer. Go gives every atomic
// load sequentially-consistent semantics; Load exists under this name so
// call sites can document which reads in the protocol are meant to be
// "opaque" per the spec, even though the underlying instruction is the
// same one used for acquire-ordered reads.
func (p *Pointer[T]) Load() *T { return p.v.Load() }

// Store performs a plain store.
func (p *Pointer[T]) Store(val *T) { p.v.Store(val) }
