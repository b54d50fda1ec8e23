// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcslock

import (
	"sync/atomic"

	"github.com/skylarkarms/mcs-go/cas"
)

// Implementation notes
//
// Mutex uses a fast-path "busy" flag plus an MCS tail-linked queue of
// node values (see node.go). The queue's tail and each node's next slot
// are manipulated through the cas package's weak-CAS shim; the busy flag
// is a plain uint32 claimed with the same shim and cleared by a single
// atomic store in Unlock.
//
// top always points to the node that, the next time its owner runs the
// Poll step below, will treat itself as "first": either a node a
// goroutine installed for itself via firstTail (the sole queue
// participant, no predecessor, so it never parks and instead spins
// directly on busy), or a node a predecessor promoted during its own
// Poll just before waking it. Because top is read and written only by
// whichever goroutine currently plays that "first" role, and every
// such handoff is mediated either by program order (the firstTail case)
// or by the release/acquire pair on node.parked (the woken case), top
// itself needs no atomic operations despite being touched by many
// goroutines over the node's lifetime.
//
// Unlock is a single release-store of busy. All queue maintenance for
// the next holder — evicting the outgoing head, promoting and waking
// its successor — happens at the end of the *incoming* holder's Lock
// call, not here. This is WeakUnfairMCS's defining asymmetry: the
// incoming holder pays the bookkeeping cost so the outgoing holder's
// release latency collapses to one store and no CAS.

// A Mutex is a WeakUnfairMCS lock. The zero value is an unlocked Mutex
// with an empty queue; no constructor is required.
type Mutex struct {
	busy uint32 // atomic; 1 while some goroutine holds the critical section.
	tail cas.Pointer[node]
	top  *node
}

// TryLock attempts to acquire m without blocking. It only ever takes the
// fast path: if the queue is non-empty (another goroutine is already
// waiting), TryLock fails even though busy might happen to be free at
// that instant, rather than cutting in front of a queued waiter via a
// path Lock itself would never take.
func (m *Mutex) TryLock() bool {
	return m.tail.Load() == nil && cas.CAS32(&m.busy, 0, 1, cas.Acquire)
}

// Lock blocks until the caller is the unique holder of m. It is not
// reentrant: calling Lock from a goroutine already holding m deadlocks.
func (m *Mutex) Lock() {
	if m.tail.Load() == nil && cas.CAS32(&m.busy, 0, 1, cas.Acquire) {
		return // Fast-path-1: lock was free, queue was empty.
	}
	m.lockSlow()
}

// lockSlow implements §4.3.2 steps 3-9: allocate a node, enqueue it (or
// discover the queue is empty and install it as the sole participant),
// park until woken (unless there was no predecessor to wake us), then
// spin for busy and run the poll that hands the queue off.
func (m *Mutex) lockSlow() {
	n := acquireNode()
	h := m.tail.Load()

	if h == nil {
		if witness := m.firstTail(n); witness == nil {
			// We are the queue's sole participant; nobody will ever
			// unpark us, so we must spin for busy ourselves.
			m.spinAcquireBusy(n)
			return
		} else {
			h = witness
		}
	}

	for {
		if _, linked := h.next.Xchg(nil, n, cas.Acquire); linked {
			break
		}
		// h was REMOVED, or already had a successor; advance h.
		h = m.tail.Load()
		if h == nil {
			if cas.CAS32(&m.busy, 0, 1, cas.Acquire) {
				releaseNode(n) // Fast-path-2: n was never published.
				return
			}
			if witness := m.firstTail(n); witness == nil {
				m.spinAcquireBusy(n)
				return
			} else {
				h = witness
			}
		}
	}

	for {
		witness, ok := m.tail.Xchg(h, n, cas.Plain)
		if ok {
			break
		}
		if n.next.Load() != nil {
			break // our successor already fixed up tail for us.
		}
		h = witness
	}

	for atomic.LoadUint32(&n.parked) != 0 { // acquire-ordered opaque load
		n.p.park()
	}

	m.spinAcquireBusy(n)
}

// firstTail attempts to install n as the only element of an empty queue.
// On success it also assigns top := n — safe, because a thread that
// just raced tail from nil to n is, by construction, the queue's only
// participant — and returns nil. On failure it returns the tail it
// actually observed, for the caller to attach after.
func (m *Mutex) firstTail(n *node) *node {
	witness, ok := m.tail.Xchg(nil, n, cas.Acquire)
	if ok {
		m.top = n
		return nil
	}
	return witness
}

// spinAcquireBusy implements §4.3.2 steps 8-9: spin until busy can be
// claimed, then run the poll that evicts this goroutine's own node and
// wakes its successor, if any.
func (m *Mutex) spinAcquireBusy(n *node) {
	var attempts uint
	for !cas.CAS32(&m.busy, 0, 1, cas.SeqCst) {
		attempts = spinDelay(attempts)
	}
	m.poll(n)
}

// poll is run by the goroutine that just became holder, treating its own
// (now top) node as the queue head to retire. It evicts that node,
// promotes its successor to top, and wakes the successor if one exists;
// otherwise it observes the queue has drained.
//
// The spec's own design notes flag the ambiguity of what to do when the
// exchange that marks first.next REMOVED observes a value other than
// the one just read: a literal "force REMOVED over it" would discard a
// successor a concurrent enqueuer had just linked, violating queue
// integrity. This implementation instead promotes whatever successor it
// observes — see DESIGN.md for the full resolution.
func (m *Mutex) poll(n *node) {
	first := m.top
	exp := first.next.Load() // acquire-ordered opaque read
	witness, ok := first.next.Xchg(exp, removedNode, cas.Acquire)
	next := exp
	if !ok {
		next = witness
	}
	if next == nil {
		if m.tail.CAS(first, nil, cas.Acquire) {
			m.top = nil
			releaseNode(first)
			return // queue drained; we remain sole holder.
		}
		next = first.next.Load() // a racing enqueuer linked in; re-read.
	}
	m.top = next
	atomic.StoreUint32(&next.parked, 0) // release store, see node I3
	next.p.unpark()
	releaseNode(first)
}

// Unlock releases m. The caller must hold m; calling Unlock on an unheld
// Mutex is undefined behavior in release builds (see debug_on.go for the
// mcslockdebug build tag, which turns this into a detected panic).
func (m *Mutex) Unlock() {
	assertHeldForUnlock(m)
	atomic.StoreUint32(&m.busy, 0) // release store; no CAS, see notes above.
}

// IsBusy is a non-authoritative observation of whether m is currently
// held: the result may be stale the instant it is returned.
func (m *Mutex) IsBusy() bool {
	return atomic.LoadUint32(&m.busy) != 0
}

// AssertHeld panics if m is not held.
func (m *Mutex) AssertHeld() {
	if atomic.LoadUint32(&m.busy) == 0 {
		panic("mcslock: Mutex not held")
	}
}

// With runs f with m held, guaranteeing Unlock runs on every exit path
// (including a panic from f), per the scoped-acquisition contract the
// protocol's failure semantics assume of every caller.
func (m *Mutex) With(f func()) {
	m.Lock()
	defer m.Unlock()
	f()
}
