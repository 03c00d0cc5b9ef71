// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyxer123/myIEC60870-5-104/asdu"
)

type fakeTransport struct {
	sent [][]byte
}

func (f *fakeTransport) Send(buf []byte) error {
	cp := append([]byte(nil), buf...)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeTransport) last() []byte {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type fakeHandler struct {
	dataCalls      int
	actConf        int
	actConfNeg     bool
	actTerm        int
	cmdResp        int
	cmdRespNeg     bool
	connectionLost int
}

func (h *fakeHandler) DataIndication(asdu.Identifier, []asdu.InformationObject) { h.dataCalls++ }
func (h *fakeHandler) InterrogationActConfIndication(_ asdu.CommonAddr, negative bool) {
	h.actConf++
	h.actConfNeg = negative
}
func (h *fakeHandler) InterrogationActTermIndication(asdu.CommonAddr) { h.actTerm++ }
func (h *fakeHandler) CommandActRespIndication(_ asdu.InformationObject, negative bool) {
	h.cmdResp++
	h.cmdRespNeg = negative
}
func (h *fakeHandler) UserProcApdu([]byte)                { }
func (h *fakeHandler) ConnectionLost(ErrorKind, error) { h.connectionLost++ }

func newTestMaster(t *testing.T) (*Master, *fakeTransport, *fakeHandler) {
	t.Helper()
	trans := &fakeTransport{}
	handler := &fakeHandler{}
	m, err := NewMaster(trans, handler, nil)
	require.NoError(t, err)
	return m, trans, handler
}

// S1 — Startup handshake (spec.md §8).
func TestScenarioStartupHandshake(t *testing.T) {
	m, trans, _ := newTestMaster(t)
	m.OnConnectTCP()

	require.Len(t, trans.sent, 1)
	assert.Equal(t, []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00}, trans.last())
	assert.Equal(t, StateStartDTWait, m.State())

	startDTCon := []byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00}
	m.PacketReadyTCP(startDTCon)

	assert.Equal(t, StateStarted, m.State())
}

// S3 — Sequence violation (spec.md §8).
func TestScenarioSequenceViolationDisconnects(t *testing.T) {
	m, _, handler := newTestMaster(t)
	m.OnConnectTCP()
	m.PacketReadyTCP([]byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00})
	require.Equal(t, StateStarted, m.State())

	// N(S)=5 while VR=0: mismatched, order-check enabled by default.
	badFrame := NewIFrame(5, 0, []byte{0x01, 0x01, 0x03, 0x00, 0x01, 0x00})
	buf, err := badFrame.MarshalBinary()
	require.NoError(t, err)

	before := handler.dataCalls
	m.PacketReadyTCP(buf)

	assert.Equal(t, StateStopped, m.State())
	assert.Equal(t, before, handler.dataCalls, "no dataIndication for the violating frame")
}

// S4 — Idle TESTFR (spec.md §8).
func TestScenarioIdleTestFR(t *testing.T) {
	m, trans, _ := newTestMaster(t)
	m.OnConnectTCP()
	m.PacketReadyTCP([]byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00})

	for i := 0; i < DefaultT3; i++ {
		m.OnTimerSecond()
	}
	assert.Equal(t, []byte{0x68, 0x04, 0x43, 0x00, 0x00, 0x00}, trans.last())

	m.PacketReadyTCP([]byte{0x68, 0x04, 0x83, 0x00, 0x00, 0x00})
	assert.False(t, m.tm.t1.armed)
}

// S5 — Single command (spec.md §8).
func TestScenarioSingleCommand(t *testing.T) {
	m, _, handler := newTestMaster(t)
	m.OnConnectTCP()
	m.PacketReadyTCP([]byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00})

	ok := m.SendCommand(asdu.InformationObject{Addr: 100, SPI: true, QOC: asdu.NewQOC(0, false)}, asdu.C_SC_NA_1)
	require.True(t, ok)

	// Peer ACTCONFIRM, positive: I-frame with N(S)=0,N(R)=1 carrying C_SC_NA_1/COT=ActivationConfirm.
	reply := asdu.NewEmptyASDU(asdu.ParamsStandard104)
	reply.Identifier = asdu.Identifier{
		Type: asdu.C_SC_NA_1, Variable: asdu.VariableStruct{Number: 1},
		Coa: asdu.CauseOfTransmission{Cause: asdu.ActivationConfirm}, CommonAddr: 1,
	}
	reply.AddInfoObject(asdu.InformationObject{Addr: 100, SPI: true})
	rawASDU, err := reply.MarshalBinary()
	require.NoError(t, err)
	f := NewIFrame(0, 1, rawASDU)
	buf, err := f.MarshalBinary()
	require.NoError(t, err)

	m.PacketReadyTCP(buf)

	assert.Equal(t, 1, handler.cmdResp)
	assert.False(t, handler.cmdRespNeg)
}

func TestSolicitGroupRejectsOutOfRange(t *testing.T) {
	m, _, _ := newTestMaster(t)
	m.OnConnectTCP()
	m.PacketReadyTCP([]byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00})
	assert.False(t, m.SolicitGroup(0))
	assert.False(t, m.SolicitGroup(17))
}

func TestSendCommandRefusedWhenNotStarted(t *testing.T) {
	m, _, _ := newTestMaster(t)
	ok := m.SendCommand(asdu.InformationObject{Addr: 1}, asdu.C_SC_NA_1)
	assert.False(t, ok)
}

func TestClockSyncEncodesCurrentTime(t *testing.T) {
	m, trans, _ := newTestMaster(t)
	m.OnConnectTCP()
	m.PacketReadyTCP([]byte{0x68, 0x04, 0x0B, 0x00, 0x00, 0x00})

	ok := m.ClockSync(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.NotEmpty(t, trans.sent)
}
