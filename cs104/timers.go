// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

// timerSet holds the countdown integers of spec.md §3/§5: "Countdown
// integers in seconds, decremented by an external 1 Hz tick." This
// replaces the teacher's time.Timer/time.Ticker fields (cs101.Client's
// t1Timer/t3Timer/timerTrySend) because those require a goroutine
// scheduler the single-threaded cooperative model does not have.
type timerSet struct {
	t1 countdown // startdt/testfr act-con wait
	t2 countdown // supervisory ack delay
	t3 countdown // idle -> testfr

	gi      countdown // periodic GI scheduling
	giRetry countdown // ACTTERM wait before retrying GI

	cmd countdown // command ACTCONFIRM supervision
}

// countdown is a single armable timer: a remaining-seconds value and
// whether it is currently counting down.
type countdown struct {
	remaining int
	armed     bool
}

func (c *countdown) arm(seconds int) {
	c.remaining = seconds
	c.armed = true
}

func (c *countdown) disarm() {
	c.armed = false
	c.remaining = 0
}

// tick decrements the timer by one second if armed, returning true exactly
// once when it reaches zero (the expiry edge). Calling tick again after
// expiry without re-arming returns false.
func (c *countdown) tick() (expired bool) {
	if !c.armed {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.armed = false
		return true
	}
	return false
}

func (t *timerSet) resetAll() {
	*t = timerSet{}
}
