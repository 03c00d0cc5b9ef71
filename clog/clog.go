// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package clog provides the small leveled logger embedded by the cs104
// connection and master types. It wraps the standard library log package
// behind Debug/Warn/Error/Critical, the same shape the engine calls
// against regardless of what backs it.
package clog

import (
	"log"
	"os"
	"sync/atomic"
)

// Clog is embedded by value into engine types, e.g.:
//
//	type Connection struct {
//		clog.Clog
//		...
//	}
//	sf.Debug("VS=%d VR=%d", sf.vs, sf.vr)
type Clog struct {
	logger  *log.Logger
	enabled int32 // atomic bool
}

// NewLogger builds a Clog with the given prefix, logging disabled by default.
func NewLogger(prefix string) Clog {
	return Clog{
		logger: log.New(os.Stderr, prefix, log.LstdFlags|log.Lmicroseconds),
	}
}

// LogMode enables or disables all output from this logger.
func (c *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreInt32(&c.enabled, 1)
	} else {
		atomic.StoreInt32(&c.enabled, 0)
	}
}

func (c *Clog) on() bool {
	return c.logger != nil && atomic.LoadInt32(&c.enabled) != 0
}

// Debug logs low-level protocol detail (frame bytes, timer arming).
func (c *Clog) Debug(format string, v ...interface{}) {
	if c.on() {
		c.logger.Printf("[DEBUG] "+format, v...)
	}
}

// Warn logs a recoverable anomaly (broken frame, unexpected ACK).
func (c *Clog) Warn(format string, v ...interface{}) {
	if c.on() {
		c.logger.Printf("[WARN] "+format, v...)
	}
}

// Error logs a connection-terminating condition.
func (c *Clog) Error(format string, v ...interface{}) {
	if c.on() {
		c.logger.Printf("[ERROR] "+format, v...)
	}
}

// Critical logs a condition the caller cannot safely continue past (e.g. a
// recovered panic in a handler callback).
func (c *Clog) Critical(format string, v ...interface{}) {
	if c.on() {
		c.logger.Printf("[CRITICAL] "+format, v...)
	}
}
