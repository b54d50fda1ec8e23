// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcslock

import (
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Scenario 1: single goroutine, 1000 sequential acquire/release cycles.
func TestSingleThreadSequential(t *testing.T) {
	var m Mutex
	counter := 0
	for i := 0; i < 1000; i++ {
		m.Lock()
		counter++
		m.Unlock()
	}
	if counter != 1000 {
		t.Fatalf("counter = %d, want 1000", counter)
	}
	if m.IsBusy() {
		t.Fatal("Mutex still busy after final Unlock")
	}
}

// Scenario 2: two goroutines contending a counter up to 200,000, checking
// P1 (mutual exclusion) the only way an external observer can: the final
// count must equal the number of increments performed, with no lost
// updates from an unsynchronized read-modify-write race.
func TestTwoThreadContention(t *testing.T) {
	var m Mutex
	var counter int
	const total = 200_000
	var wg sync.WaitGroup
	wg.Add(2)
	for g := 0; g < 2; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < total/2; i++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != total {
		t.Fatalf("counter = %d, want %d", counter, total)
	}
}

// Scenario 3: N=23 goroutines each add to a shared accumulator and
// multiply into a shared big.Int product, guarded by the same Mutex. The
// accumulator and the product are both order-independent under the
// operations used (addition and multiplication are commutative), so any
// interleaving the scheduler chooses must still produce the same final
// values, while remaining sensitive to any missed or doubled update.
func TestManyGoroutinesAccumulator(t *testing.T) {
	const n = 23
	const perGoroutine = 500
	var m Mutex
	var sum int64
	product := big.NewInt(1)

	var wg sync.WaitGroup
	wg.Add(n)
	for g := 1; g <= n; g++ {
		g := int64(g)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				m.Lock()
				sum += g
				product.Mul(product, big.NewInt(g))
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	var wantSum int64
	wantProduct := big.NewInt(1)
	for g := int64(1); g <= n; g++ {
		wantSum += g * perGoroutine
		for i := 0; i < perGoroutine; i++ {
			wantProduct.Mul(wantProduct, big.NewInt(g))
		}
	}
	if sum != wantSum {
		t.Fatalf("sum = %d, want %d", sum, wantSum)
	}
	if product.Cmp(wantProduct) != 0 {
		t.Fatalf("product = %s, want %s", product.String(), wantProduct.String())
	}
}

// Scenario 4: N=1000 goroutines x 100 iterations each, fanned out and
// joined with errgroup; a deadlock shows up as Wait never returning (the
// test hangs). This is P2 (progress) under heavy contention: every
// goroutine must eventually acquire and release m exactly 100 times.
func TestManyGoroutinesNoDeadlock(t *testing.T) {
	var m Mutex
	var total int64
	const goroutines = 1000
	const perGoroutine = 100

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < perGoroutine; j++ {
				m.Lock()
				total++
				m.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if want := int64(goroutines * perGoroutine); total != want {
		t.Fatalf("total = %d, want %d", total, want)
	}
}

// Scenario 5: an uncontended Lock/Unlock pair must take fast-path-1 and
// never touch the node free list, i.e. it must not grow it.
func TestFastPathNoAllocation(t *testing.T) {
	var m Mutex

	// Drain the free list so a prior test's nodes can't mask an allocation
	// that this test's own fast path (wrongly) performed.
	spinLock(&freeListMu)
	freeListHead = nil
	spinUnlock(&freeListMu)

	if !m.TryLock() {
		t.Fatal("TryLock failed on a free, empty-queue Mutex")
	}
	m.Unlock()

	m.Lock()
	m.Unlock()

	spinLock(&freeListMu)
	grew := freeListHead != nil
	spinUnlock(&freeListMu)
	if grew {
		t.Fatal("fast-path Lock/Unlock left a node on the free list")
	}
}

// Scenario 6: P3 (no lost wakeup). Two goroutines race to acquire m while
// it is held by a third; at most one of the two waiters may ever be
// parked waiting on a predecessor at a time, and both must eventually
// return from Lock once the holder releases.
func TestTwoSimultaneousArrivals(t *testing.T) {
	var m Mutex
	m.Lock() // held by the test goroutine itself

	const waiters = 2
	done := make(chan struct{}, waiters)
	var ready sync.WaitGroup
	ready.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			ready.Done()
			m.Lock()
			m.Unlock()
			done <- struct{}{}
		}()
	}
	ready.Wait()
	m.Unlock()

	for i := 0; i < waiters; i++ {
		<-done
	}
}

// TestQueueIntegrityManyWaiters drives a large number of simultaneous
// waiters against a long-held lock, then releases it and confirms every
// waiter is eventually admitted exactly once — the queue must neither
// drop a linked node nor admit the same node twice (P4).
func TestQueueIntegrityManyWaiters(t *testing.T) {
	var m Mutex
	m.Lock()

	const waiters = 300
	admitted := make([]int32, waiters)
	var ready sync.WaitGroup
	var done sync.WaitGroup
	ready.Add(waiters)
	done.Add(waiters)
	for i := 0; i < waiters; i++ {
		i := i
		go func() {
			ready.Done()
			m.Lock()
			atomic.AddInt32(&admitted[i], 1)
			m.Unlock()
			done.Done()
		}()
	}
	ready.Wait()
	m.Unlock()
	done.Wait()

	for i, v := range admitted {
		if v != 1 {
			t.Fatalf("waiter %d admitted %d times, want 1", i, v)
		}
	}
}

// TestAssertHeld checks AssertHeld's documented contract directly.
func TestAssertHeld(t *testing.T) {
	var m Mutex
	m.Lock()
	m.AssertHeld() // must not panic
	m.Unlock()

	defer func() {
		if recover() == nil {
			t.Fatal("AssertHeld did not panic on an unheld Mutex")
		}
	}()
	m.AssertHeld()
}

// TestWith checks that With releases the lock even when f panics.
func TestWith(t *testing.T) {
	var m Mutex
	m.With(func() {})
	if m.IsBusy() {
		t.Fatal("Mutex still busy after With returned normally")
	}

	func() {
		defer func() { recover() }()
		m.With(func() { panic("boom") })
	}()
	if m.IsBusy() {
		t.Fatal("Mutex still busy after With's function panicked")
	}
}

// TestFastPathRaceNoLostWakeup targets the §4.3.2 step 6 race directly:
// a goroutine in lockSlow that just failed to link onto a predecessor
// re-reads tail and, if it observes nil, retries the busy CAS before
// re-attempting firstTail — the race is between that re-read and a
// concurrent TryLock/Lock also observing an empty queue. Mixing
// TryLock's pure fast-path retry loop (which the teacher's own
// TryLock stress test drives with runtime.Gosched() between attempts,
// see nsync/mu_test.go's countingLoopTryMu) with full Lock/Unlock
// pairs from other goroutines keeps tail oscillating between nil and
// non-nil, which is exactly the window step 6 has to handle correctly.
// A lost wakeup here would manifest as some goroutine's Lock or
// TryLock-retry-loop never returning, hanging the whole test.
func TestFastPathRaceNoLostWakeup(t *testing.T) {
	var m Mutex
	var counter int64
	const tryLockers = 8
	const lockers = 8
	const iterations = 20000

	var wg sync.WaitGroup
	wg.Add(tryLockers + lockers)

	for i := 0; i < tryLockers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				for !m.TryLock() {
					runtime.Gosched()
				}
				atomic.AddInt64(&counter, 1)
				m.Unlock()
			}
		}()
	}
	for i := 0; i < lockers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				m.Lock()
				atomic.AddInt64(&counter, 1)
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	if want := int64((tryLockers + lockers) * iterations); counter != want {
		t.Fatalf("counter = %d, want %d", counter, want)
	}
}

// TestStress is P1/P2/P5 under sustained load: skipped in -short mode
// since it targets roughly a million acquire/release cycles spread over
// four goroutines per core.
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}
	var m Mutex
	var counter int64
	goroutines := 4 * runtime.GOMAXPROCS(0)
	const target = 1_000_000
	perGoroutine := target / goroutines

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < perGoroutine; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if want := int64(goroutines * perGoroutine); counter != want {
		t.Fatalf("counter = %d, want %d", counter, want)
	}
}
