// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package asdu

import (
	"encoding/binary"
	"fmt"
	"time"
)

// encodeElement encodes one information object's payload (everything after
// the IOA: value octets plus, for tagged types, the time tag).
func encodeElement(t TypeID, io InformationObject, p *Params) ([]byte, error) {
	var b []byte

	switch t {
	case M_SP_NA_1, M_SP_TA_1, M_SP_TB_1:
		siq := byte(io.Quality)
		if io.SPI {
			siq |= 0x01
		}
		b = []byte{siq}

	case M_DP_NA_1, M_DP_TA_1, M_DP_TB_1:
		diq := byte(io.Quality) | byte(io.DPI)&0x03
		b = []byte{diq}

	case M_ST_NA_1, M_ST_TA_1, M_ST_TB_1:
		vti := byte(int8(io.Value)) & 0x7F
		if io.Transient {
			vti |= 0x80
		}
		b = []byte{vti, byte(io.Quality)}

	case M_BO_NA_1, M_BO_TA_1, M_BO_TB_1, C_BO_NA_1, C_BO_TA_1:
		bs := make([]byte, 4)
		binary.LittleEndian.PutUint32(bs, io.Raw32)
		b = bs
		if t != C_BO_NA_1 && t != C_BO_TA_1 {
			b = append(b, byte(io.Quality))
		}

	case M_ME_NA_1, M_ME_TA_1, M_ME_TD_1:
		nva := make([]byte, 2)
		binary.LittleEndian.PutUint16(nva, encodeNormalized(io.Value))
		b = append(nva, byte(io.Quality))

	case M_ME_ND_1:
		nva := make([]byte, 2)
		binary.LittleEndian.PutUint16(nva, encodeNormalized(io.Value))
		b = nva

	case M_ME_NB_1, M_ME_TB_1, M_ME_TE_1:
		sva := make([]byte, 2)
		binary.LittleEndian.PutUint16(sva, uint16(int16(io.Value)))
		b = append(sva, byte(io.Quality))

	case M_ME_NC_1, M_ME_TC_1, M_ME_TF_1:
		b = append(encodeShortFloat(float32(io.Value)), byte(io.Quality))

	case M_IT_NA_1, M_IT_TA_1, M_IT_TB_1:
		cb := make([]byte, 4)
		binary.LittleEndian.PutUint32(cb, uint32(io.Counter))
		seq := io.SeqNum & 0x1F
		if io.CounterAdj {
			seq |= 0x20
		}
		if io.CounterOverflow {
			seq |= 0x40
		}
		if io.CounterInvalid {
			seq |= 0x80
		}
		b = append(cb, seq)

	case C_SC_NA_1, C_SC_TA_1:
		sco := byte(io.QOC)
		if io.SPI {
			sco |= 0x01
		} else {
			sco &^= 0x01
		}
		b = []byte{sco}

	case C_DC_NA_1, C_DC_TA_1:
		dco := byte(io.QOC) &^ 0x03
		dco |= byte(io.DPI) & 0x03
		b = []byte{dco}

	case C_RC_NA_1, C_RC_TA_1:
		rco := byte(io.QOC) &^ 0x03
		rco |= byte(io.DPI) & 0x03
		b = []byte{rco}

	case C_SE_NA_1, C_SE_TA_1:
		nva := make([]byte, 2)
		binary.LittleEndian.PutUint16(nva, encodeNormalized(io.Value))
		b = append(nva, byte(io.QOC))

	case C_SE_NB_1, C_SE_TB_1:
		sva := make([]byte, 2)
		binary.LittleEndian.PutUint16(sva, uint16(int16(io.Value)))
		b = append(sva, byte(io.QOC))

	case C_SE_NC_1, C_SE_TC_1:
		b = append(encodeShortFloat(float32(io.Value)), byte(io.QOC))

	case M_EI_NA_1:
		b = []byte{io.COI}

	case C_IC_NA_1:
		b = []byte{io.QOI}

	case C_CI_NA_1:
		b = []byte{byte(io.QCC)}

	case C_RD_NA_1:
		b = []byte{}

	case C_CS_NA_1:
		if !io.Time.Valid {
			return nil, fmt.Errorf("asdu: C_CS_NA_1 requires a time tag")
		}
		b = cp56FromDecoded(io.Time, p)

	case C_TS_NA_1:
		b = []byte{0xAA, 0x55} // fixed test pattern, per the standard's worked example

	case C_TS_TA_1:
		tsc := make([]byte, 2)
		binary.LittleEndian.PutUint16(tsc, io.TSC)
		b = append(tsc, cp56FromDecoded(io.Time, p)...)

	case C_RP_NA_1:
		b = []byte{io.QOI}

	case C_CD_NA_1:
		b = CP16Time2a(io.ElapsedMsec)

	default:
		return nil, fmt.Errorf("asdu: encode: unsupported type id %s", t)
	}

	if tag := timeTagSize(t); tag == 7 {
		b = append(b, cp56FromDecoded(io.Time, p)...)
	} else if tag == 3 {
		b = append(b, CP24Time2a(timeFromDecoded(io.Time))...)
	}

	return b, nil
}

// decodeElement decodes one information object's payload for TypeID t.
func decodeElement(t TypeID, addr InfoObjAddr, b []byte, p *Params) (InformationObject, error) {
	io := InformationObject{Addr: addr}

	switch t {
	case M_SP_NA_1, M_SP_TA_1, M_SP_TB_1:
		io.SPI = b[0]&0x01 != 0
		io.Quality = QualityDescriptor(b[0] &^ 0x01)

	case M_DP_NA_1, M_DP_TA_1, M_DP_TB_1:
		io.DPI = DoublePointValue(b[0] & 0x03)
		io.Quality = QualityDescriptor(b[0] &^ 0x03)

	case M_ST_NA_1, M_ST_TA_1, M_ST_TB_1:
		io.Value = float64(int8(b[0]<<1) >> 1)
		io.Transient = b[0]&0x80 != 0
		io.Quality = QualityDescriptor(b[1])

	case M_BO_NA_1, M_BO_TA_1, M_BO_TB_1:
		io.Raw32 = binary.LittleEndian.Uint32(b[0:4])
		io.Quality = QualityDescriptor(b[4])

	case C_BO_NA_1, C_BO_TA_1:
		io.Raw32 = binary.LittleEndian.Uint32(b[0:4])

	case M_ME_NA_1, M_ME_TA_1, M_ME_TD_1:
		io.Value = decodeNormalized(b[0:2])
		io.Quality = QualityDescriptor(b[2])

	case M_ME_ND_1:
		io.Value = decodeNormalized(b[0:2])

	case M_ME_NB_1, M_ME_TB_1, M_ME_TE_1:
		io.Value = float64(int16(binary.LittleEndian.Uint16(b[0:2])))
		io.Quality = QualityDescriptor(b[2])

	case M_ME_NC_1, M_ME_TC_1, M_ME_TF_1:
		io.Value = float64(decodeShortFloat(b[0:4]))
		io.Quality = QualityDescriptor(b[4])

	case M_IT_NA_1, M_IT_TA_1, M_IT_TB_1:
		io.Counter = int32(binary.LittleEndian.Uint32(b[0:4]))
		seq := b[4]
		io.SeqNum = seq & 0x1F
		io.CounterAdj = seq&0x20 != 0
		io.CounterOverflow = seq&0x40 != 0
		io.CounterInvalid = seq&0x80 != 0

	case C_SC_NA_1, C_SC_TA_1:
		io.SPI = b[0]&0x01 != 0
		io.QOC = QOC(b[0] &^ 0x01)

	case C_DC_NA_1, C_DC_TA_1:
		io.DPI = DoublePointValue(b[0] & 0x03)
		io.QOC = QOC(b[0] &^ 0x03)

	case C_RC_NA_1, C_RC_TA_1:
		io.DPI = DoublePointValue(b[0] & 0x03)
		io.QOC = QOC(b[0] &^ 0x03)

	case C_SE_NA_1, C_SE_TA_1:
		io.Value = decodeNormalized(b[0:2])
		io.QOC = QOC(b[2])

	case C_SE_NB_1, C_SE_TB_1:
		io.Value = float64(int16(binary.LittleEndian.Uint16(b[0:2])))
		io.QOC = QOC(b[2])

	case C_SE_NC_1, C_SE_TC_1:
		io.Value = float64(decodeShortFloat(b[0:4]))
		io.QOC = QOC(b[4])

	case M_EI_NA_1:
		io.COI = b[0]

	case C_IC_NA_1:
		io.QOI = b[0]

	case C_CI_NA_1:
		io.QCC = QualifierCountCall(b[0])

	case C_RD_NA_1:
		// no payload

	case C_CS_NA_1:
		decodeCP56Into(&io, b[0:7], p)

	case C_TS_NA_1:
		// fixed test pattern, nothing to extract

	case C_TS_TA_1:
		io.TSC = binary.LittleEndian.Uint16(b[0:2])
		decodeCP56Into(&io, b[2:9], p)

	case C_RP_NA_1:
		io.QOI = b[0]

	case C_CD_NA_1:
		msec, err := ParseCP16Time2a(b[0:2])
		if err != nil {
			return io, err
		}
		io.ElapsedMsec = msec

	default:
		return io, fmt.Errorf("asdu: decode: unsupported type id %s", t)
	}

	if tag := timeTagSize(t); tag == 7 {
		tagOff := len(b) - 7
		decodeCP56Into(&io, b[tagOff:tagOff+7], p)
	} else if tag == 3 {
		tagOff := len(b) - 3
		msec, minute, invalid, err := ParseCP24Time2a(b[tagOff : tagOff+3])
		if err == nil {
			io.Time = CP56{Valid: true, Invalid: invalid, Minute: minute, Second: int(msec / 1000), Msec: int(msec % 1000)}
		}
	}

	return io, nil
}

func decodeCP56Into(io *InformationObject, b []byte, p *Params) {
	loc := p.InfoObjTimeZone
	t, invalid, su, err := ParseCP56Time2a(b, loc)
	if err != nil {
		return
	}
	io.Time = CP56{
		Valid: true, Invalid: invalid, SU: su,
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Msec: t.Nanosecond() / 1e6,
	}
}

// cp56FromDecoded re-encodes c, preserving the SU bit c carried from its own
// decode (or false for a freshly constructed CP56) rather than re-deriving
// it from the Location's current DST rule.
func cp56FromDecoded(c CP56, p *Params) []byte {
	return cp56BytesSU(timeFromDecoded(c), p.InfoObjTimeZone, c.SU)
}

func timeFromDecoded(c CP56) time.Time {
	loc := time.Local
	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}
	month := time.Month(c.Month)
	if month == 0 {
		month = time.Now().Month()
	}
	day := c.Day
	if day == 0 {
		day = time.Now().Day()
	}
	return time.Date(year, month, day, c.Hour, c.Minute, c.Second, c.Msec*1e6, loc)
}
