// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

// ConnState is the connection lifecycle of spec.md §4.4, collapsed from
// the teacher's dual status/linkState variables (cs101.Client tracks
// statusXxx and linkStateXxx separately) into the single enum the spec
// names directly.
type ConnState int

const (
	StateStopped ConnState = iota
	StateStartDTWait
	StateStarted
	StateStopDTWait
)

func (s ConnState) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStartDTWait:
		return "STARTDT_WAIT"
	case StateStarted:
		return "STARTED"
	case StateStopDTWait:
		return "STOPDT_WAIT"
	default:
		return "UNKNOWN"
	}
}
