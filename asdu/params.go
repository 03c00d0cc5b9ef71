// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package asdu

import (
	"errors"
	"time"
)

// Params describes the ASDU address-field widths. IEC 60870-5-104 fixes
// these at CommonAddrSize=2, CauseSize=2 (cause octet + originator octet),
// InfoObjAddrSize=3, but the codec keeps them configurable the way the
// teacher's cs101.Config keeps LinkAddrSize/CommonAddrSize configurable,
// since some RTUs still deploy the narrower 101-heritage widths over TCP.
type Params struct {
	// CommonAddrSize is the width in octets of the Common Address of ASDU (1 or 2).
	CommonAddrSize byte
	// CauseSize is the width in octets of the Cause of Transmission field,
	// 1 (no originator address) or 2 (cause octet + originator octet).
	CauseSize byte
	// InfoObjAddrSize is the width in octets of the Information Object Address (1, 2, or 3).
	InfoObjAddrSize byte
	// InfoObjTimeZone is the time zone CP56Time2a payloads are encoded/decoded in.
	InfoObjTimeZone *time.Location
}

// ParamsStandard104 is the default parameter set mandated by IEC 60870-5-104:
// 2-octet common address, 2-octet cause (with originator), 3-octet IOA.
var ParamsStandard104 = &Params{
	CommonAddrSize:  2,
	CauseSize:       2,
	InfoObjAddrSize: 3,
	InfoObjTimeZone: time.Local,
}

// Valid reports whether p describes a legal, supported field-width combination.
func (p *Params) Valid() error {
	if p == nil {
		return errors.New("asdu: nil params")
	}
	if p.CommonAddrSize != 1 && p.CommonAddrSize != 2 {
		return errors.New("asdu: common address size must be 1 or 2")
	}
	if p.CauseSize != 1 && p.CauseSize != 2 {
		return errors.New("asdu: cause of transmission size must be 1 or 2")
	}
	if p.InfoObjAddrSize < 1 || p.InfoObjAddrSize > 3 {
		return errors.New("asdu: information object address size must be 1, 2 or 3")
	}
	return nil
}

// IdentifierSize returns the octet width of the fixed Data Unit Identifier
// (type id + VSQ + cause[+OA] + common address) for these params.
func (p *Params) IdentifierSize() int {
	return 2 + int(p.CauseSize) + int(p.CommonAddrSize)
}

// GlobalCommonAddr is the broadcast common address (all-ones on the wire).
const GlobalCommonAddr CommonAddr = 0xFFFF
