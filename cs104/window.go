// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

// seqMod is the modulus of the 15-bit sequence space (spec.md §3).
const seqMod = 1 << 15

// window tracks VS/VR and the unacknowledged-send/receive bookkeeping of
// spec.md §4.3, grounded on eddielth-iec104__client.go's sendSeqNum/
// recvSeqNum pair generalized into one struct (the teacher's cs101 package
// has no window at all — 101 is acked per-frame at the link layer — so
// this component is grounded primarily on the other_examples 104 clients).
type window struct {
	vs uint16 // next send sequence number
	vr uint16 // next expected receive sequence number

	lastAckedVS uint16 // peer's latest N(R): every N(S) below it is acknowledged
	unackedSent int     // vs - lastAckedVS, mod seqMod

	recvSinceAck int // I-frames received since our last S-frame/ack
}

func newWindow() *window {
	return &window{}
}

func (w *window) reset() {
	*w = window{}
}

// seqDelta computes (a - b) mod seqMod, the number of sequence numbers
// between b (exclusive) and a (inclusive).
func seqDelta(a, b uint16) uint16 {
	return (a - b) & (seqMod - 1)
}

// stampSend assigns the current VS/VR to an outbound I-frame and advances
// VS, per spec.md §4.3 "On every sent I-frame...". Returns false if the
// window is exhausted (k unacked frames outstanding).
func (w *window) stampSend(k int) (ns, nr uint16, ok bool) {
	if w.unackedSent >= k {
		return 0, 0, false
	}
	ns = w.vs
	nr = w.vr
	w.vs = (w.vs + 1) % seqMod
	w.unackedSent++
	return ns, nr, true
}

// receiveOK verifies the peer's N(S) against VR (step 1 of spec.md §4.3)
// and, if acceptable (or order-check is disabled), advances VR.
func (w *window) receiveOK(ns uint16, orderCheck bool) (realigned bool, accept bool) {
	if ns != w.vr {
		if orderCheck {
			return false, false
		}
		w.vr = ns
		realigned = true
	}
	w.vr = (w.vr + 1) % seqMod
	return realigned, true
}

// ackUpTo processes a peer N(R), releasing all sent I-frames with
// N(S) < nr (mod seqMod) per spec.md §4.3 step 3. Returns true if the
// unacked set became empty (the caller should reset t1).
func (w *window) ackUpTo(nr uint16) (becameEmpty bool, err error) {
	if seqDelta(nr, w.lastAckedVS) > seqDelta(w.vs, w.lastAckedVS) {
		return false, errProtocolNROverrun
	}
	w.lastAckedVS = nr
	w.unackedSent = int(seqDelta(w.vs, w.lastAckedVS))
	return w.unackedSent == 0, nil
}

// noteReceived increments the received-since-ack counter (step 4). It
// returns true once the counter reaches w, meaning the caller must send
// an immediate S-frame and reset the counter.
func (win *window) noteReceived(wThreshold int) (mustAck bool) {
	win.recvSinceAck++
	if win.recvSinceAck >= wThreshold {
		win.recvSinceAck = 0
		return true
	}
	return false
}

// clearAckCounter resets the received-since-ack counter after an S-frame
// (or a piggybacked ack) has been sent for any reason other than reaching w.
func (w *window) clearAckCounter() {
	w.recvSinceAck = 0
}
