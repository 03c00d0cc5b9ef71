// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdownExpiresAfterArmedSeconds(t *testing.T) {
	var c countdown
	c.arm(3)
	assert.False(t, c.tick())
	assert.False(t, c.tick())
	assert.True(t, c.tick())
	assert.False(t, c.armed)
}

func TestCountdownDisarmedNeverExpires(t *testing.T) {
	var c countdown
	assert.False(t, c.tick())
	assert.False(t, c.tick())
}

func TestCountdownDisarmStopsTicking(t *testing.T) {
	var c countdown
	c.arm(5)
	c.disarm()
	assert.False(t, c.tick())
}

func TestTimerSetResetAllClearsEverything(t *testing.T) {
	var ts timerSet
	ts.t1.arm(6)
	ts.t3.arm(10)
	ts.resetAll()
	assert.False(t, ts.t1.armed)
	assert.False(t, ts.t3.armed)
}
