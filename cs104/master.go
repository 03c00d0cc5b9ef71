// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"time"

	"github.com/lyxer123/myIEC60870-5-104/asdu"
)

// giState tracks one in-flight general- or counter-interrogation per
// spec.md §4.5, replacing the blocking channel-receive the teacher uses
// in cs101.Client.InterrogationCmd: the cooperative model cannot block, so
// the outcome is resolved later from handleIFrame/OnTimerSecond instead.
type giState struct {
	pending bool
	acked   bool // ACTCONFIRM seen
	qoi     byte
}

// cmdState tracks one in-flight select/execute command, grounded on
// cs101.Client's command-wrapper methods generalized to non-blocking
// bookkeeping the same way giState is.
type cmdState struct {
	pending bool
	object  asdu.InformationObject
}

// Master is the C7 workflow layer: GI cycle, counter interrogation, clock
// sync, command select/execute, built on top of the C3-C6 Connection.
// Grounded on cs101.Client's InterrogationCmd/CounterInterrogationCmd/
// ClockSynchronizationCmd/command-wrapper methods (same builder shape:
// construct an asdu.Identifier, encode IOA+qualifier, hand to Send) and
// eddielth-iec104__client.go's GeneralInterrogation ACTCON/ACTTERM
// bookkeeping.
type Master struct {
	*Connection

	params  *asdu.Params
	config  *Config
	handler Handler

	gi     giState
	ci     giState
	cmd    cmdState
	testTSC uint16

	stats Statistics
}

// Statistics is the observability snapshot of Master.Stats(), grounded on
// eddielth-iec104__client.go's GetStatistics(); carried per the ambient-
// stack rule even though spec.md's non-goals exclude metrics exporters —
// this is an in-process read of counters the engine already keeps, not an
// exporter.
type Statistics struct {
	VS, VR        uint16
	UnackedSent   int
	LastGIOK      bool
	FramesSent    uint64
	FramesRecv    uint64
}

// NewMaster builds a Master over trans, with opt's configuration (or
// defaults) and handler receiving the upstream callbacks.
func NewMaster(trans Transport, handler Handler, opt *ClientOption) (*Master, error) {
	if opt == nil {
		opt = NewOption()
	}
	m := &Master{
		params:  opt.params,
		config:  opt.config,
		handler: handler,
	}
	conn, err := NewConnection(trans, m, opt)
	if err != nil {
		return nil, err
	}
	m.Connection = conn
	return m, nil
}

// --- asduSink ---

func (m *Master) onStarted() {
	if m.config.GIPeriod > 0 {
		m.tm.gi.arm(0) // fires on the first OnTimerSecond tick after START
	}
}

func (m *Master) onStopped() {
	m.gi = giState{}
	m.ci = giState{}
	m.cmd = cmdState{}
	m.handler.ConnectionLost(TransportDown, nil)
}

func (m *Master) onTestFRCon() {}

func (m *Master) onASDU(raw []byte) {
	m.stats.FramesRecv++
	a := asdu.NewEmptyASDU(m.params)
	if err := a.UnmarshalBinary(raw); err != nil {
		m.Warn("unsupported or malformed ASDU, forwarding raw: %v", err)
		m.handler.UserProcApdu(raw)
		return
	}
	m.dispatch(a)
}

// OnTimerSecond overrides Connection's: it first delegates to the embedded
// Connection, then drives the periodic-GI, GI-retry and command supervision
// timers. Counter interrogations have no supervision timer.
func (m *Master) OnTimerSecond() {
	m.Connection.OnTimerSecond()
	if m.Connection.state != StateStarted {
		return
	}

	if m.tm.gi.armed && m.tm.gi.tick() {
		m.solicitInternal(20) // global GI, QOI=20
	}
	if m.gi.pending && m.tm.giRetry.tick() {
		m.Warn("GI timed out waiting for ACTTERM, retrying")
		m.handler.InterrogationActTermIndication(asdu.CommonAddr(m.config.CommonAddr))
		m.gi = giState{}
		m.solicitInternal(20)
	}
	if m.cmd.pending && m.tm.cmd.tick() {
		m.Warn("command timed out waiting for ACTCONFIRM")
		m.cmd.pending = false
		m.handler.CommandActRespIndication(m.cmd.object, true)
	}
}

func (m *Master) dispatch(a *asdu.ASDU) {
	switch a.Type {
	case asdu.C_IC_NA_1:
		m.handleInterrogationReply(a)
	case asdu.C_CI_NA_1:
		m.handleCounterInterrogationReply(a)
	case asdu.C_CS_NA_1:
		if a.Coa.Cause == asdu.ActivationConfirm {
			m.Debug("clock sync confirmed")
		}
	case asdu.C_SC_NA_1, asdu.C_SC_TA_1, asdu.C_DC_NA_1, asdu.C_DC_TA_1,
		asdu.C_RC_NA_1, asdu.C_RC_TA_1, asdu.C_SE_NA_1, asdu.C_SE_TA_1,
		asdu.C_SE_NB_1, asdu.C_SE_TB_1, asdu.C_SE_NC_1, asdu.C_SE_TC_1,
		asdu.C_BO_NA_1, asdu.C_BO_TA_1:
		m.handleCommandReply(a)
	default:
		m.handler.DataIndication(a.Identifier, a.Infos)
	}
}

func (m *Master) handleInterrogationReply(a *asdu.ASDU) {
	switch a.Coa.Cause {
	case asdu.ActivationConfirm:
		m.gi.pending = true
		m.gi.acked = true
		m.tm.giRetry.arm(m.config.GIRetryTime)
		m.handler.InterrogationActConfIndication(a.CommonAddr, a.Coa.Negative)
	case asdu.ActivationTerm:
		m.tm.giRetry.disarm()
		m.gi.pending = false
		m.stats.LastGIOK = true
		m.handler.InterrogationActTermIndication(a.CommonAddr)
		if m.config.GIPeriod > 0 {
			m.tm.gi.arm(m.config.GIPeriod)
		}
	default:
		if a.Coa.Cause >= asdu.InterrogatedByStation && a.Coa.Cause <= asdu.InterrogatedByGroup16 {
			m.handler.DataIndication(a.Identifier, a.Infos)
		}
	}
}

func (m *Master) handleCounterInterrogationReply(a *asdu.ASDU) {
	switch a.Coa.Cause {
	case asdu.ActivationConfirm:
		m.ci.pending = true
		m.handler.InterrogationActConfIndication(a.CommonAddr, a.Coa.Negative)
	case asdu.ActivationTerm:
		m.ci.pending = false
		m.handler.InterrogationActTermIndication(a.CommonAddr)
	default:
		m.handler.DataIndication(a.Identifier, a.Infos)
	}
}

func (m *Master) handleCommandReply(a *asdu.ASDU) {
	if len(a.Infos) == 0 {
		return
	}
	obj := a.Infos[0]
	switch a.Coa.Cause {
	case asdu.ActivationConfirm:
		m.tm.cmd.disarm()
		m.cmd.pending = false
		m.handler.CommandActRespIndication(obj, a.Coa.Negative)
	case asdu.ActivationTerm:
		// command closed; nothing further to track.
	}
}

// --- C7 outbound operations ---

// SolicitGI starts a global general interrogation (QOI=20).
func (m *Master) SolicitGI() bool { return m.solicitInternal(20) }

// SolicitGroup starts a group-scoped general interrogation, group in 1..16,
// QOI=20+group per spec.md §4.2's QOI table (SPEC_FULL.md §6 supplement).
func (m *Master) SolicitGroup(group int) bool {
	if group < 1 || group > 16 {
		return false
	}
	return m.solicitInternal(byte(20 + group))
}

func (m *Master) solicitInternal(qoi byte) bool {
	a := asdu.NewEmptyASDU(m.params)
	a.Identifier = asdu.Identifier{
		Type:     asdu.C_IC_NA_1,
		Variable: asdu.VariableStruct{Number: 1},
		Coa:      asdu.CauseOfTransmission{Cause: asdu.Activation},
		OrigAddr: m.config.OrigAddr,
		CommonAddr: asdu.CommonAddr(m.config.CommonAddr),
	}
	a.AddInfoObject(asdu.InformationObject{Addr: 0, QOI: qoi})
	ok := m.sendASDUObj(a)
	if ok {
		m.gi = giState{pending: true, qoi: qoi}
		m.tm.giRetry.arm(m.config.GIRetryTime)
	}
	return ok
}

// SolicitCounterInterrogation starts a counter interrogation for the given
// request selector (asdu.CounterGeneral or asdu.CounterGroup1..4) and
// freeze/reset mode.
func (m *Master) SolicitCounterInterrogation(request, freeze byte) bool {
	a := asdu.NewEmptyASDU(m.params)
	a.Identifier = asdu.Identifier{
		Type:     asdu.C_CI_NA_1,
		Variable: asdu.VariableStruct{Number: 1},
		Coa:      asdu.CauseOfTransmission{Cause: asdu.Activation},
		OrigAddr: m.config.OrigAddr,
		CommonAddr: asdu.CommonAddr(m.config.CommonAddr),
	}
	a.AddInfoObject(asdu.InformationObject{Addr: 0, QCC: asdu.NewQualifierCountCall(request, freeze)})
	ok := m.sendASDUObj(a)
	if ok {
		m.ci = giState{pending: true}
	}
	return ok
}

// ClockSync sends C_CS_NA_1 with the master's current time (spec.md §4.5).
func (m *Master) ClockSync(now time.Time) bool {
	a := asdu.NewEmptyASDU(m.params)
	a.Identifier = asdu.Identifier{
		Type:     asdu.C_CS_NA_1,
		Variable: asdu.VariableStruct{Number: 1},
		Coa:      asdu.CauseOfTransmission{Cause: asdu.Activation},
		OrigAddr: m.config.OrigAddr,
		CommonAddr: asdu.CommonAddr(m.config.CommonAddr),
	}
	a.AddInfoObject(asdu.InformationObject{Addr: 0, Time: timeToCP56(now)})
	return m.sendASDUObj(a)
}

// SendCommand submits a select/execute command; typeID must be in
// 45..64 and obj.QOC.Select() indicates select vs execute (spec.md §4.5).
// Returns accepted=false if the connection is not STARTED or the window
// is exhausted.
func (m *Master) SendCommand(obj asdu.InformationObject, typeID asdu.TypeID) bool {
	a := asdu.NewEmptyASDU(m.params)
	a.Identifier = asdu.Identifier{
		Type:     typeID,
		Variable: asdu.VariableStruct{Number: 1},
		Coa:      asdu.CauseOfTransmission{Cause: asdu.Activation},
		OrigAddr: m.config.OrigAddr,
		CommonAddr: asdu.CommonAddr(m.config.CommandCommonAddr),
	}
	a.AddInfoObject(obj)
	ok := m.sendASDUObj(a)
	if ok {
		m.cmd = cmdState{pending: true, object: obj}
		m.tm.cmd.arm(m.config.CommandTimeout)
	}
	return ok
}

// TestCommand sends C_TS_TA_1 with an incrementing TSC and the current
// timestamp, an application-level liveness probe distinct from APCI
// TESTFR (spec.md §4.5).
func (m *Master) TestCommand(now time.Time) bool {
	m.testTSC++
	a := asdu.NewEmptyASDU(m.params)
	a.Identifier = asdu.Identifier{
		Type:     asdu.C_TS_TA_1,
		Variable: asdu.VariableStruct{Number: 1},
		Coa:      asdu.CauseOfTransmission{Cause: asdu.Activation},
		OrigAddr: m.config.OrigAddr,
		CommonAddr: asdu.CommonAddr(m.config.CommonAddr),
	}
	a.AddInfoObject(asdu.InformationObject{Addr: 0, TSC: m.testTSC, Time: timeToCP56(now)})
	return m.sendASDUObj(a)
}

func (m *Master) sendASDUObj(a *asdu.ASDU) bool {
	raw, err := a.MarshalBinary()
	if err != nil {
		m.Error("failed to encode outbound ASDU: %v", err)
		return false
	}
	ok, err := m.Connection.SendASDU(raw)
	if err != nil {
		m.Warn("SendASDU: %v", err)
	}
	if ok {
		m.stats.FramesSent++
	}
	return ok
}

func timeToCP56(t time.Time) asdu.CP56 {
	return asdu.CP56{
		Valid: true,
		Year:  t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Msec: t.Nanosecond() / 1e6,
	}
}

// Stats returns a point-in-time snapshot of the engine's ambient counters.
func (m *Master) Stats() Statistics {
	s := m.stats
	s.VS, s.VR = m.win.vs, m.win.vr
	s.UnackedSent = m.win.unackedSent
	return s
}
