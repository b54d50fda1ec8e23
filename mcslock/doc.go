// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mcslock implements WeakUnfairMCS, a mutual-exclusion lock
// combining a fast-path "busy" flag with an MCS tail-linked waiter queue.
//
// A thread arriving at a free lock whose queue is empty claims it with a
// single CAS on the busy flag (the fast path) and never touches the
// queue. A thread arriving at a held lock allocates a waiter node, links
// it onto the queue tail, and parks (or, if it is the only node in the
// queue, spins on busy). The outgoing holder's Unlock is a single
// store; the incoming holder — the thread being woken — performs the
// queue-maintenance work of promoting the next waiter and pre-waking it,
// before its own Lock call returns. This shifts queue-maintenance cost
// from the releaser (every Unlock) to the acquirer that happens to be
// draining the queue. The fast path is taken only when the queue is
// observed empty, so an arrival never skips over a queue that is already
// non-empty; but the emptiness check and the busy CAS are separate steps,
// so an arrival can still win busy ahead of a goroutine that enqueued in
// between. WeakUnfairMCS therefore gives no FIFO guarantee, in exchange
// for that fast path and for a release that never takes a slow path.
//
// Mutex is not reentrant: calling Lock while already holding the same
// Mutex deadlocks. It is not a condition variable, it has no read/write
// distinction, and a pending Lock cannot be cancelled or timed out.
package mcslock
