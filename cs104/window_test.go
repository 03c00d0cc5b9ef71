// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStampSendIncrementsVS(t *testing.T) {
	w := newWindow()
	ns, nr, ok := w.stampSend(12)
	require.True(t, ok)
	assert.EqualValues(t, 0, ns)
	assert.EqualValues(t, 0, nr)
	assert.EqualValues(t, 1, w.vs)
}

func TestWindowExhaustionAtK(t *testing.T) {
	w := newWindow()
	for i := 0; i < 12; i++ {
		_, _, ok := w.stampSend(12)
		require.True(t, ok)
	}
	_, _, ok := w.stampSend(12)
	assert.False(t, ok, "13th send must be refused when k=12")
}

func TestWindowReceiveAdvancesVR(t *testing.T) {
	w := newWindow()
	_, accept := w.receiveOK(0, true)
	assert.True(t, accept)
	assert.EqualValues(t, 1, w.vr)
}

func TestWindowReceiveOutOfOrderRejectedWithOrderCheck(t *testing.T) {
	w := newWindow()
	w.vr = 3
	_, accept := w.receiveOK(5, true)
	assert.False(t, accept)
}

func TestWindowReceiveOutOfOrderRealignsWithoutOrderCheck(t *testing.T) {
	w := newWindow()
	w.vr = 3
	realigned, accept := w.receiveOK(5, false)
	assert.True(t, accept)
	assert.True(t, realigned)
	assert.EqualValues(t, 6, w.vr)
}

func TestWindowAckReleasesUnacked(t *testing.T) {
	w := newWindow()
	for i := 0; i < 5; i++ {
		w.stampSend(12)
	}
	require.EqualValues(t, 5, w.unackedSent)
	empty, err := w.ackUpTo(3)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.EqualValues(t, 2, w.unackedSent)

	empty, err = w.ackUpTo(5)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestWindowAckOverrunIsProtocolError(t *testing.T) {
	w := newWindow()
	w.stampSend(12)
	_, err := w.ackUpTo(5) // acks frames never sent
	assert.ErrorIs(t, err, errProtocolNROverrun)
}

func TestWindowNoteReceivedTriggersAtW(t *testing.T) {
	w := newWindow()
	for i := 0; i < 7; i++ {
		assert.False(t, w.noteReceived(8))
	}
	assert.True(t, w.noteReceived(8))
	assert.EqualValues(t, 0, w.recvSinceAck)
}
