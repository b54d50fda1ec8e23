// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcslock

// parker is the Park/Unpark Bridge from the spec, realized as a binary
// semaphore over a buffered channel. Go has no public goroutine
// suspend/resume syscall (goroutines are not OS threads), so a
// channel-backed semaphore is the idiomatic stand-in: park() blocks
// until a permit is available, unpark() deposits one without blocking.
//
// The permit is idempotent: calling unpark() before the corresponding
// park() is not lost, it is simply consumed immediately when park() is
// next called — the same "issue one permit" contract required of the
// Park/Unpark Bridge by the spec.
type parker struct {
	permit chan struct{}
}

func newParker() parker {
	return parker{permit: make(chan struct{}, 1)}
}

// park blocks until a permit is available and consumes it.
func (p parker) park() {
	<-p.permit
}

// unpark ensures a permit is available, without blocking if one already is.
func (p parker) unpark() {
	select {
	case p.permit <- struct{}{}:
	default:
	}
}
