// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"fmt"

	"github.com/lyxer123/myIEC60870-5-104/clog"
)

// asduSink receives protocol-layer events from Connection. Master is the
// only implementation; splitting the interface out keeps C3-C6 (this
// file) decoupled from C7's workflow bookkeeping the way the component
// table in spec.md §2 separates them.
type asduSink interface {
	onStarted()
	onStopped()
	onASDU(raw []byte)
	onTestFRCon()
}

// Connection is the APCI-layer engine: framer, window, timers, and state
// machine (C3-C6). It is single-threaded cooperative per spec.md §5 — no
// goroutines, no channels — generalized from the teacher's cs101.Client,
// which runs the equivalent state machine inside a goroutine driven by
// select over timers and channels (cs101/client.go's runProtocol). Every
// method here is a plain synchronous call; the host must serialize calls
// to OnConnectTCP/OnDisconnectTCP/OnTimerSecond/PacketReadyTCP itself
// (directly, or via ThreadSafeConnection).
type Connection struct {
	clog.Clog

	config *Config
	trans  Transport
	sink   asduSink

	state ConnState
	win   *window
	tm    timerSet

	rxBuf []byte // reassembly buffer for partial APDUs
}

// NewConnection builds a Connection bound to trans for I/O and sink for
// protocol-layer events, using opt's configuration (or the defaults).
func NewConnection(trans Transport, sink asduSink, opt *ClientOption) (*Connection, error) {
	if opt == nil {
		opt = NewOption()
	}
	if err := opt.config.Valid(); err != nil {
		return nil, err
	}
	return &Connection{
		Clog:   clog.NewLogger("cs104 "),
		config: opt.config,
		trans:  trans,
		sink:   sink,
		state:  StateStopped,
		win:    newWindow(),
	}, nil
}

// State reports the current lifecycle state.
func (c *Connection) State() ConnState { return c.state }

// OnConnectTCP is called once the host's transport has completed a TCP
// connect. It arms STARTDT and starts t1 (spec.md §4.4 STOPPED -> STARTDT_WAIT).
func (c *Connection) OnConnectTCP() {
	c.win.reset()
	c.tm.resetAll()
	c.rxBuf = c.rxBuf[:0]
	c.state = StateStartDTWait
	c.tm.t1.arm(c.config.T1)
	c.sendU(uStartDTAct)
	c.Debug("onConnectTCP: -> STARTDT_WAIT, t1 armed")
}

// OnDisconnectTCP returns to STOPPED and clears all counters/timers
// (spec.md §3 Lifecycle, §5 Cancellation: "cancels all pending timers,
// clears unacked sets, and drops in-flight commands without invoking
// their callbacks").
func (c *Connection) OnDisconnectTCP() {
	c.state = StateStopped
	c.win.reset()
	c.tm.resetAll()
	c.rxBuf = c.rxBuf[:0]
	c.sink.onStopped()
	c.Debug("onDisconnectTCP: -> STOPPED")
}

// OnTimerSecond is the external 1 Hz tick driving every countdown in the
// engine (spec.md §3 "Countdown integers in seconds").
func (c *Connection) OnTimerSecond() {
	if c.state == StateStopped {
		return
	}

	if c.tm.t1.tick() {
		switch c.state {
		case StateStartDTWait:
			c.Warn("t1 expired awaiting STARTDT-con, disconnecting")
			c.terminate(TransportDown, fmt.Errorf("t1 expired awaiting STARTDT-con"))
			return
		default:
			c.Warn("t1 expired awaiting TESTFR-con, disconnecting")
			c.terminate(TransportDown, fmt.Errorf("t1 expired awaiting TESTFR-con"))
			return
		}
	}

	if c.tm.t2.tick() {
		c.sendS()
	}

	if c.state == StateStarted && c.tm.t3.tick() {
		c.Debug("t3 idle expired, sending TESTFR-act")
		c.sendU(uTestFRAct)
		c.tm.t3.arm(c.config.T3)
		c.tm.t1.arm(c.config.T1)
	}
}

// PacketReadyTCP is called by the host when trans has bytes available; it
// appends data to the reassembly buffer and processes every complete APDU
// found inside it.
func (c *Connection) PacketReadyTCP(data []byte) {
	c.rxBuf = append(c.rxBuf, data...)

	for {
		frame, consumed, ok, err := ParseFrame(c.rxBuf)
		if err != nil {
			c.Warn("framing error: %v", err)
			c.terminate(FramingError, err)
			return
		}
		if !ok {
			if consumed > 0 {
				c.rxBuf = c.rxBuf[consumed:]
			}
			return
		}
		c.rxBuf = c.rxBuf[consumed:]
		c.resetIdle()
		if err := c.handleFrame(frame); err != nil {
			return // handleFrame already terminated the connection if needed
		}
	}
}

func (c *Connection) resetIdle() {
	if c.state == StateStarted {
		c.tm.t3.arm(c.config.T3)
	}
}

func (c *Connection) handleFrame(f Frame) error {
	switch f.Format {
	case FormatU:
		return c.handleUFrame(f)
	case FormatS:
		return c.handleSFrame(f)
	case FormatI:
		return c.handleIFrame(f)
	default:
		err := fmt.Errorf("unrecognized frame format")
		c.terminate(UnknownControl, err)
		return err
	}
}

func (c *Connection) handleUFrame(f Frame) error {
	switch f.UControl {
	case uStartDTCon:
		if c.state != StateStartDTWait {
			c.Warn("unexpected STARTDT-con in state %s, ignoring", c.state)
			return nil
		}
		c.tm.t1.disarm()
		c.state = StateStarted
		c.tm.t3.arm(c.config.T3)
		c.Debug("STARTDT-con: -> STARTED")
		c.sink.onStarted()
	case uStartDTAct:
		// Masters don't expect this but respond defensively (spec.md §4.4).
		c.sendU(uStartDTCon)
	case uStopDTAct:
		c.sendU(uStopDTCon)
		c.terminate(Protocol, fmt.Errorf("peer sent STOPDT-act"))
		return fmt.Errorf("stopped by peer")
	case uStopDTCon:
		// Only meaningful if we initiated STOPDT; no-op otherwise.
	case uTestFRAct:
		c.sendU(uTestFRCon)
	case uTestFRCon:
		c.tm.t1.disarm()
		c.sink.onTestFRCon()
	default:
		err := fmt.Errorf("unknown U-format control octet 0x%02x", f.UControl)
		c.terminate(UnknownControl, err)
		return err
	}
	return nil
}

func (c *Connection) handleSFrame(f Frame) error {
	if c.state != StateStarted {
		return nil
	}
	becameEmpty, err := c.win.ackUpTo(f.RecvSeq)
	if err != nil {
		c.terminate(Protocol, err)
		return err
	}
	if becameEmpty {
		c.tm.t1.disarm()
	}
	return nil
}

func (c *Connection) handleIFrame(f Frame) error {
	if c.state != StateStarted {
		c.Warn("I-frame received outside STARTED, ignoring")
		return nil
	}

	realigned, accept := c.win.receiveOK(f.SendSeq, c.config.SeqOrderCheck)
	if !accept {
		err := fmt.Errorf("N(S)=%d does not match expected VR", f.SendSeq)
		c.terminate(SequenceViolation, err)
		return err
	}
	if realigned {
		c.Warn("N(S) realigned VR to %d (order check disabled)", f.SendSeq)
	}

	becameEmpty, err := c.win.ackUpTo(f.RecvSeq)
	if err != nil {
		c.terminate(Protocol, err)
		return err
	}
	if becameEmpty {
		c.tm.t1.disarm()
	}

	// dataIndication happens before any supervisory ack is sent (spec.md §5
	// ordering guarantee) — deliver first, ack after.
	c.sink.onASDU(f.ASDU)

	if c.win.noteReceived(c.config.W) {
		c.sendS()
	} else {
		c.tm.t2.arm(c.config.T2)
	}
	return nil
}

// terminate tears the connection down following spec.md §7's propagation
// rule for framing/sequence/unknown-control/payload-mismatch errors:
// disconnect, state -> STOPPED, upstream notified via ConnectionLost.
func (c *Connection) terminate(kind ErrorKind, err error) {
	c.state = StateStopped
	c.win.reset()
	c.tm.resetAll()
	pe := newProtocolError(kind, "%w", err)
	c.Error("terminating connection: %v", pe)
	c.sink.onStopped()
}

// SendASDU encodes one outbound I-frame carrying raw (an already-marshaled
// ASDU) and writes it to the transport, respecting the send window
// (spec.md §4.3 "if the unacked-set size reaches k, further I-frames are
// refused with a backpressure signal").
func (c *Connection) SendASDU(raw []byte) (bool, error) {
	if c.state != StateStarted {
		return false, ErrNotStarted
	}
	ns, nr, ok := c.win.stampSend(c.config.K)
	if !ok {
		return false, ErrWindowExhausted
	}
	c.win.clearAckCounter()
	frame := NewIFrame(ns, nr, raw)
	buf, err := frame.MarshalBinary()
	if err != nil {
		return false, err
	}
	if err := c.trans.Send(buf); err != nil {
		c.terminate(TransportDown, err)
		return false, err
	}
	if !c.tm.t1.armed {
		c.tm.t1.arm(c.config.T1)
	}
	return true, nil
}

func (c *Connection) sendU(control byte) {
	buf, _ := newUFrame(control).MarshalBinary()
	if err := c.trans.Send(buf); err != nil {
		c.terminate(TransportDown, err)
	}
}

func (c *Connection) sendS() {
	buf, _ := NewSFrame(c.win.vr).MarshalBinary()
	if err := c.trans.Send(buf); err != nil {
		c.terminate(TransportDown, err)
		return
	}
	c.win.clearAckCounter()
	c.tm.t2.disarm()
}
