// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import "github.com/lyxer123/myIEC60870-5-104/asdu"

// Handler is the set of upstream callbacks the host implements, renamed
// from the teacher's ClientHandlerInterface (cs101/interface.go) to match
// spec.md §6's named callbacks. One interface, every callback; a host
// that does not care about a given indication still must implement a
// (possibly empty) method, same contract shape as the teacher's.
type Handler interface {
	// DataIndication surfaces one decoded group of Information Objects;
	// a single call contains only objects sharing one TypeID (spec.md §4.5).
	DataIndication(asduID asdu.Identifier, objects []asdu.InformationObject)

	// InterrogationActConfIndication fires on the GI ACTCONFIRM (COT=7).
	InterrogationActConfIndication(coa asdu.CommonAddr, negative bool)
	// InterrogationActTermIndication fires on the GI ACTTERM (COT=10). It
	// also fires when a GI times out waiting for ACTTERM, just before the
	// GI is retried.
	InterrogationActTermIndication(coa asdu.CommonAddr)

	// CommandActRespIndication fires on a command ACTCONFIRM, with the
	// P/N (negative) bit reflected from the peer. When no ACTCONFIRM
	// arrives within Config.CommandTimeout it fires with the submitted
	// object and negative=true.
	CommandActRespIndication(object asdu.InformationObject, negative bool)

	// UserProcApdu is an optional raw hook for non-standard or unparsed
	// frames (spec.md §6 "optional raw hook for non-standard frames").
	// Implementations that don't need it can leave the body empty.
	UserProcApdu(raw []byte)

	// ConnectionLost is the "generic connection lost path" spec.md §7
	// requires for framing/sequence/unknown-control/payload-mismatch
	// terminations, distinct from a clean onDisconnectTCP call.
	ConnectionLost(kind ErrorKind, err error)
}

// Transport is the abstract byte-stream collaborator of spec.md §5/§9.
// It carries only the send operation; the engine does not read from the
// transport itself, the host passes received bytes in through
// PacketReadyTCP. The engine never owns a net.Conn — dialing,
// accepting, and reconnecting are the host's responsibility, exactly as
// cs101.Client depends on an injected io.ReadWriteCloser rather than
// opening its own serial port.
type Transport interface {
	// Send transmits buf in full, or returns an error (treated as
	// TransportDown by the caller).
	Send(buf []byte) error
}
