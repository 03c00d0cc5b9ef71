// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package asdu implements the IEC 60870-5-101/104 Application Service Data
// Unit codec: the Data Unit Identifier plus the information-object payloads
// the engine needs to drive a master session (process data in monitor
// direction, commands and system messages in control direction).
package asdu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ASDUSizeMax is the largest legal ASDU length: the 255-octet APDU minus the
// start octet, the length octet and the four control octets.
const ASDUSizeMax = 249

// ASDU is a decoded Application Service Data Unit: one Data Unit Identifier
// plus its information objects.
type ASDU struct {
	Params *Params
	Identifier
	Infos []InformationObject

	// raw is set by UnmarshalBinary for diagnostic dumps; never relied on by
	// re-encoding.
	raw []byte
}

// NewEmptyASDU builds an ASDU ready to have information objects appended,
// using the given params for address-field widths.
func NewEmptyASDU(params *Params) *ASDU {
	if params == nil {
		params = ParamsStandard104
	}
	return &ASDU{Params: params}
}

// AddInfoObject appends an information object, keying the VSQ element count.
func (a *ASDU) AddInfoObject(io InformationObject) {
	a.Infos = append(a.Infos, io)
	a.Variable.Number = uint8(len(a.Infos))
}

var (
	ErrInvalidParams    = errors.New("asdu: invalid params")
	ErrTooShort         = errors.New("asdu: frame shorter than identifier")
	ErrInfoObjTruncated = errors.New("asdu: information object payload truncated")
	ErrNoInfoObjects    = errors.New("asdu: ASDU carries zero information objects")
)

// MarshalBinary encodes the full ASDU: identifier followed by each
// information object (address + payload, SQ-aware).
func (a *ASDU) MarshalBinary() ([]byte, error) {
	if a.Params == nil {
		return nil, ErrInvalidParams
	}
	if err := a.Params.Valid(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, ASDUSizeMax)
	buf = append(buf, byte(a.Type))
	buf = append(buf, a.Variable.Value())
	buf = append(buf, a.Coa.Value())
	if a.Params.CauseSize == 2 {
		buf = append(buf, a.OrigAddr)
	}
	ca := make([]byte, 2)
	binary.LittleEndian.PutUint16(ca, uint16(a.CommonAddr))
	buf = append(buf, ca[:a.Params.CommonAddrSize]...)

	for i, io := range a.Infos {
		// SQ addressing only emits the IOA for the first object; the rest
		// are implicitly consecutive.
		if !a.Variable.SQ || i == 0 {
			ioa := make([]byte, 4)
			binary.LittleEndian.PutUint32(ioa, uint32(io.Addr))
			buf = append(buf, ioa[:a.Params.InfoObjAddrSize]...)
		}
		elemBytes, err := encodeElement(a.Type, io, a.Params)
		if err != nil {
			return nil, err
		}
		buf = append(buf, elemBytes...)
	}

	if len(buf) > ASDUSizeMax {
		return nil, fmt.Errorf("asdu: encoded length %d exceeds max %d", len(buf), ASDUSizeMax)
	}
	return buf, nil
}

// UnmarshalBinary decodes an ASDU using a.Params for field widths
// (typically set via NewEmptyASDU); a nil Params is replaced by
// ParamsStandard104.
func (a *ASDU) UnmarshalBinary(raw []byte) error {
	if a.Params == nil {
		a.Params = ParamsStandard104
	}
	if err := a.Params.Valid(); err != nil {
		return err
	}
	hdr := 2 + int(a.Params.CauseSize) + int(a.Params.CommonAddrSize)
	if len(raw) < hdr {
		return ErrTooShort
	}
	a.raw = raw
	a.Type = TypeID(raw[0])
	a.Variable = ParseVariableStruct(raw[1])
	off := 2

	a.Coa = ParseCauseOfTransmission(raw[off])
	off++
	if a.Params.CauseSize == 2 {
		a.OrigAddr = raw[off]
		off++
	}

	caBuf := make([]byte, 2)
	copy(caBuf, raw[off:off+int(a.Params.CommonAddrSize)])
	a.CommonAddr = CommonAddr(binary.LittleEndian.Uint16(caBuf))
	off += int(a.Params.CommonAddrSize)

	n := int(a.Variable.Number)
	if n == 0 {
		return ErrNoInfoObjects
	}
	a.Infos = make([]InformationObject, 0, n)

	elemSize, err := ioElementSize(a.Type)
	if err != nil {
		return err
	}
	tagSize := timeTagSize(a.Type)

	var firstAddr InfoObjAddr
	for i := 0; i < n; i++ {
		var addr InfoObjAddr
		if !a.Variable.SQ || i == 0 {
			if off+int(a.Params.InfoObjAddrSize) > len(raw) {
				return ErrInfoObjTruncated
			}
			ioaBuf := make([]byte, 4)
			copy(ioaBuf, raw[off:off+int(a.Params.InfoObjAddrSize)])
			addr = InfoObjAddr(binary.LittleEndian.Uint32(ioaBuf))
			off += int(a.Params.InfoObjAddrSize)
			if i == 0 {
				firstAddr = addr
			}
		} else {
			addr = firstAddr + InfoObjAddr(i)
		}

		need := elemSize + tagSize
		if off+need > len(raw) {
			return ErrInfoObjTruncated
		}
		io, err := decodeElement(a.Type, addr, raw[off:off+need], a.Params)
		if err != nil {
			return err
		}
		a.Infos = append(a.Infos, io)
		off += need
	}
	if !a.Variable.SQ && off != len(raw) {
		return fmt.Errorf("asdu: declared object count leaves %d trailing bytes", len(raw)-off)
	}
	return nil
}

func (a *ASDU) String() string {
	return fmt.Sprintf("%s [%d objs]", a.Identifier.String(), len(a.Infos))
}
