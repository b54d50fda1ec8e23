// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ticket implements FairSync, a strict-FIFO ticket lock used as
// a fairness comparison point for mcslock.Mutex, and FastSync, a variant
// that adds a fast-path bypass for the uncontended case.
//
// Unlike mcslock.Mutex, neither Mutex nor FastMutex here ever parks a
// goroutine: both are pure busy-waits, hybridized with runtime.Gosched
// once a waiter's estimated distance from the front of the line grows
// past half the machine's core count. That hybrid spin/yield is chosen
// by distance from the front of the line, not by a growing attempt
// count, so it does not share mcslock's spinDelay backoff (see spin.go
// in the mcslock package).
package ticket

import (
	"runtime"
	"sync/atomic"
)

// Mutex is FairSync: a ticket lock with strict FIFO ordering. The zero
// value is unlocked and ready to use.
type Mutex struct {
	ticket atomic.Uint64 // next ticket to hand out
	done   atomic.Uint64 // ticket number currently being served
}

// Lock blocks until the caller holds the strict-FIFO front-of-line
// position. Waiters are served in the exact order they called Lock.
func (m *Mutex) Lock() {
	my := m.ticket.Add(1) - 1
	spinUntilServed(my, &m.done)
}

// Unlock releases m, admitting the next ticket holder.
func (m *Mutex) Unlock() {
	my := m.done.Load()
	m.done.Store(my + 1) // release store
}

// spinUntilServed busy-waits until done reaches my. While the estimated
// distance from the front of the line is small (under half the core
// count), it spin-hints with a short busy loop; once the distance grows
// past that, continuing to spin would just burn cycles other runnable
// goroutines could use, so it yields instead.
func spinUntilServed(my uint64, done *atomic.Uint64) {
	halfCores := uint64(runtime.NumCPU()) / 2
	if halfCores == 0 {
		halfCores = 1
	}
	for {
		cur := done.Load() // acquire
		if my-cur == 0 {
			return
		}
		if my-cur < halfCores {
			spinHint()
		} else {
			runtime.Gosched()
		}
	}
}

// spinHint is a short busy loop, cheaper than a full Gosched, used while
// a waiter is believed to be close to the front of the line.
func spinHint() {
	for i := 0; i != 32; i++ {
	}
}

// fastState is the FastSync fast-path tri-state: fastFree means nobody
// has claimed the bypass, fastHeld means a single uncontended acquirer
// owns it without having drawn a ticket, and fastNAN ("not a number",
// following the spec's own naming) means the fast path is in the
// process of handing off to the ticket-queue and must not be claimed.
type fastState uint32

const (
	fastFree fastState = iota
	fastHeld
	fastNAN
)

// FastMutex is FastSync: FairSync plus a fast-path bypass for the
// uncontended case, at the cost of (like mcslock.Mutex) no longer being
// strictly FIFO in that uncontended case.
type FastMutex struct {
	fast atomic.Uint32
	Mutex
}

// Lock acquires the fast path if uncontended, falling through to the
// ticket queue otherwise.
func (m *FastMutex) Lock() {
	if m.fast.CompareAndSwap(uint32(fastFree), uint32(fastHeld)) {
		return
	}
	m.Mutex.Lock()
	for !m.fast.CompareAndSwap(uint32(fastFree), uint32(fastNAN)) {
		runtime.Gosched()
	}
}

// Unlock releases m.
func (m *FastMutex) Unlock() {
	if m.fast.CompareAndSwap(uint32(fastHeld), uint32(fastFree)) {
		return
	}
	// Prior state was fastNAN: we came through the ticket path.
	m.fast.Store(uint32(fastFree))
	m.Mutex.Unlock()
}
