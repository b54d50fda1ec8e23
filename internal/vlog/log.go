// Copyright 2026 The mcs-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vlog is the ambient logging package for mcs-go. It wraps a
// glog-style backend the same way the packages this module is modeled on
// do, but trims the surface to what a library (not a CLI) needs: leveled
// info/warning logging, gated by a verbosity threshold, with no
// command-line flag binding.
//
// Nothing in the lock packages' hot paths calls into vlog: every call
// site here is off the acquire/release fast path, used only for one-time
// diagnostics (architecture classification), optional tracing, and
// debug-build misuse detection.
package vlog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cosmosnicolaou/llog"
)

// Level is a verbosity level, as accepted by llog.Level.
type Level int32

type logger struct {
	log   *llog.Log
	mu    sync.Mutex
	level int32 // atomic; current V() threshold
}

// Log is the package-wide logger instance, in the style of the teacher's
// package-level Log variable.
var Log = &logger{log: llog.NewLogger("mcslock", 1)}

// SetLevel sets the verbosity threshold consulted by V(). It defaults to
// 0, which suppresses every V(n) call for n > 0.
func SetLevel(v Level) {
	atomic.StoreInt32(&Log.level, int32(v))
}

// V reports whether logging at the given level is enabled right now, and
// returns a handle whose Infof is either live or a no-op, so call sites
// can write vlog.Log.V(2).Infof(...) without branching themselves.
func (l *logger) V(v Level) verboseLogger {
	if atomic.LoadInt32(&l.level) >= int32(v) {
		return verboseLogger{l: l, on: true}
	}
	return verboseLogger{}
}

type verboseLogger struct {
	l  *logger
	on bool
}

func (v verboseLogger) Infof(format string, args ...interface{}) {
	if !v.on {
		return
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	v.l.log.Printf(llog.InfoLog, format, args...)
}

// Warningf logs unconditionally at warning severity; used for the
// mcslockdebug double-release / misuse diagnostics.
func (l *logger) Warningf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Printf(llog.WarningLog, format, args...)
}

// Panicf logs at warning severity and then panics, mirroring the
// teacher's Panicf.
func (l *logger) Panicf(format string, args ...interface{}) {
	l.Warningf(format, args...)
	panic(fmt.Sprintf(format, args...))
}
