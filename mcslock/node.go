// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcslock

import (
	"sync/atomic"

	"github.com/skylarkarms/mcs-go/cas"
)

// node is a single waiter's per-acquire record (§4.2 of the design this
// package implements). A node is allocated when a Lock call cannot take
// the fast path, linked onto the queue tail, parked (if it is not the
// queue head), promoted to head during its predecessor's drain, woken,
// and finally evicted (its next slot set to removedNode) before the
// owning goroutine returns from Lock.
type node struct {
	p parker

	// parked is non-zero while the owning goroutine should remain
	// parked. It is cleared by exactly one thread — the predecessor —
	// before that predecessor calls p.unpark(). Read opaquely by the
	// owner's park loop, per §4.4.
	parked uint32

	next cas.Pointer[node]

	// flNext links this node onto the package-level free list; valid
	// only while the node sits on that list.
	flNext *node
}

// removedNode is the REMOVED sentinel: a statically allocated node,
// distinguishable by pointer identity from nil and from every live node,
// stored into a node's next slot to mark it evicted from the reachable
// queue. It is never linked into any queue and never recycled.
var removedNode = &node{}

var (
	freeListMu   uint32 // spinlock guarding freeListHead
	freeListHead *node
)

// acquireNode returns an unused node, taken from the free list if one is
// available, or freshly allocated otherwise.
func acquireNode() *node {
	spinLock(&freeListMu)
	n := freeListHead
	if n != nil {
		freeListHead = n.flNext
	}
	spinUnlock(&freeListMu)

	if n == nil {
		n = &node{p: newParker()}
	}
	n.flNext = nil
	n.next.Store(nil)
	atomic.StoreUint32(&n.parked, 1)
	return n
}

// releaseNode returns n to the free list. The caller must no longer hold
// any reachable reference to n (see §5's resource-discipline note: this
// is only safe once the owning goroutine has finished its own drain and
// is about to return from Lock).
func releaseNode(n *node) {
	spinLock(&freeListMu)
	n.flNext = freeListHead
	freeListHead = n
	spinUnlock(&freeListMu)
}

// spinLock/spinUnlock protect the tiny free-list critical section with a
// raw spinlock rather than a second mcslock.Mutex, to avoid a
// bootstrapping dependency of the node allocator on the lock it serves.
func spinLock(word *uint32) {
	var attempts uint
	for !cas.CAS32(word, 0, 1, cas.Acquire) {
		attempts = spinDelay(attempts)
	}
}

func spinUnlock(word *uint32) {
	atomic.StoreUint32(word, 0) // release store
}
