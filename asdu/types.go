// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package asdu

import "fmt"

// TypeID identifies the ASDU's information-object payload shape (1 octet
// on the wire). Grounded on the principal-families table in the spec plus
// the full command/time-tagged catalog the table elides, cross-checked
// against Yobol-go-iec104's TypeID block and the wireshark iec104 dissector
// comments those constants carry forward.
type TypeID uint8

const (
	_ TypeID = iota // 0 is not used

	// Process information in monitor direction.

	M_SP_NA_1 TypeID = 1  // single-point information
	M_SP_TA_1 TypeID = 2  // single-point information with CP24Time2a
	M_DP_NA_1 TypeID = 3  // double-point information
	M_DP_TA_1 TypeID = 4  // double-point information with CP24Time2a
	M_ST_NA_1 TypeID = 5  // step position information
	M_ST_TA_1 TypeID = 6  // step position information with CP24Time2a
	M_BO_NA_1 TypeID = 7  // bitstring of 32 bit
	M_BO_TA_1 TypeID = 8  // bitstring of 32 bit with CP24Time2a
	M_ME_NA_1 TypeID = 9  // measured value, normalized value
	M_ME_TA_1 TypeID = 10 // measured value, normalized value with CP24Time2a
	M_ME_NB_1 TypeID = 11 // measured value, scaled value
	M_ME_TB_1 TypeID = 12 // measured value, scaled value with CP24Time2a
	M_ME_NC_1 TypeID = 13 // measured value, short floating point
	M_ME_TC_1 TypeID = 14 // measured value, short floating point with CP24Time2a
	M_IT_NA_1 TypeID = 15 // integrated totals
	M_IT_TA_1 TypeID = 16 // integrated totals with CP24Time2a
	M_EP_TA_1 TypeID = 17 // event of protection equipment with CP24Time2a
	M_EP_TB_1 TypeID = 18 // packed start events of protection equipment with CP24Time2a
	M_EP_TC_1 TypeID = 19 // packed output circuit information with CP24Time2a
	M_PS_NA_1 TypeID = 20 // packed single-point information with status change detection
	M_ME_ND_1 TypeID = 21 // measured value, normalized value without quality descriptor
	M_SP_TB_1 TypeID = 30 // single-point information with CP56Time2a
	M_DP_TB_1 TypeID = 31 // double-point information with CP56Time2a
	M_ST_TB_1 TypeID = 32 // step position information with CP56Time2a
	M_BO_TB_1 TypeID = 33 // bitstring of 32 bit with CP56Time2a
	M_ME_TD_1 TypeID = 34 // measured value, normalized value with CP56Time2a
	M_ME_TE_1 TypeID = 35 // measured value, scaled value with CP56Time2a
	M_ME_TF_1 TypeID = 36 // measured value, short floating point with CP56Time2a
	M_IT_TB_1 TypeID = 37 // integrated totals with CP56Time2a
	M_EP_TD_1 TypeID = 38 // event of protection equipment with CP56Time2a
	M_EP_TE_1 TypeID = 39 // packed start events of protection equipment with CP56Time2a
	M_EP_TF_1 TypeID = 40 // packed output circuit information with CP56Time2a

	// Process information in control direction.

	C_SC_NA_1 TypeID = 45 // single command
	C_DC_NA_1 TypeID = 46 // double command
	C_RC_NA_1 TypeID = 47 // regulating step command
	C_SE_NA_1 TypeID = 48 // set-point command, normalized value
	C_SE_NB_1 TypeID = 49 // set-point command, scaled value
	C_SE_NC_1 TypeID = 50 // set-point command, short floating point
	C_BO_NA_1 TypeID = 51 // bitstring of 32 bit command

	// System information in monitor direction.

	M_EI_NA_1 TypeID = 70 // end of initialization

	// System information in control direction.

	C_IC_NA_1 TypeID = 100 // general interrogation command
	C_CI_NA_1 TypeID = 101 // counter interrogation command
	C_RD_NA_1 TypeID = 102 // read command
	C_CS_NA_1 TypeID = 103 // clock synchronization command
	C_TS_NA_1 TypeID = 104 // test command (obsolete, fixed test pattern)
	C_RP_NA_1 TypeID = 105 // reset process command
	C_CD_NA_1 TypeID = 106 // delay acquisition command
	C_TS_TA_1 TypeID = 107 // test command with CP56Time2a

	// Process telegrams with long time tag (control direction confirmations).

	C_SC_TA_1 TypeID = 58 // single command with CP56Time2a
	C_DC_TA_1 TypeID = 59 // double command with CP56Time2a
	C_RC_TA_1 TypeID = 60 // regulating step command with CP56Time2a
	C_SE_TA_1 TypeID = 61 // set-point command, normalized value, with CP56Time2a
	C_SE_TB_1 TypeID = 62 // set-point command, scaled value, with CP56Time2a
	C_SE_TC_1 TypeID = 63 // set-point command, short floating point, with CP56Time2a
	C_BO_TA_1 TypeID = 64 // bitstring of 32 bit command with CP56Time2a
)

var typeNames = map[TypeID]string{
	M_SP_NA_1: "M_SP_NA_1", M_SP_TA_1: "M_SP_TA_1", M_DP_NA_1: "M_DP_NA_1",
	M_DP_TA_1: "M_DP_TA_1", M_ST_NA_1: "M_ST_NA_1", M_ST_TA_1: "M_ST_TA_1",
	M_BO_NA_1: "M_BO_NA_1", M_BO_TA_1: "M_BO_TA_1", M_ME_NA_1: "M_ME_NA_1",
	M_ME_TA_1: "M_ME_TA_1", M_ME_NB_1: "M_ME_NB_1", M_ME_TB_1: "M_ME_TB_1",
	M_ME_NC_1: "M_ME_NC_1", M_ME_TC_1: "M_ME_TC_1", M_IT_NA_1: "M_IT_NA_1",
	M_IT_TA_1: "M_IT_TA_1", M_EP_TA_1: "M_EP_TA_1", M_EP_TB_1: "M_EP_TB_1",
	M_EP_TC_1: "M_EP_TC_1", M_PS_NA_1: "M_PS_NA_1", M_ME_ND_1: "M_ME_ND_1",
	M_SP_TB_1: "M_SP_TB_1", M_DP_TB_1: "M_DP_TB_1", M_ST_TB_1: "M_ST_TB_1",
	M_BO_TB_1: "M_BO_TB_1", M_ME_TD_1: "M_ME_TD_1", M_ME_TE_1: "M_ME_TE_1",
	M_ME_TF_1: "M_ME_TF_1", M_IT_TB_1: "M_IT_TB_1", M_EP_TD_1: "M_EP_TD_1",
	M_EP_TE_1: "M_EP_TE_1", M_EP_TF_1: "M_EP_TF_1",
	C_SC_NA_1: "C_SC_NA_1", C_DC_NA_1: "C_DC_NA_1", C_RC_NA_1: "C_RC_NA_1",
	C_SE_NA_1: "C_SE_NA_1", C_SE_NB_1: "C_SE_NB_1", C_SE_NC_1: "C_SE_NC_1",
	C_BO_NA_1: "C_BO_NA_1", C_SC_TA_1: "C_SC_TA_1", C_DC_TA_1: "C_DC_TA_1",
	C_RC_TA_1: "C_RC_TA_1", C_SE_TA_1: "C_SE_TA_1", C_SE_TB_1: "C_SE_TB_1",
	C_SE_TC_1: "C_SE_TC_1", C_BO_TA_1: "C_BO_TA_1",
	M_EI_NA_1: "M_EI_NA_1",
	C_IC_NA_1: "C_IC_NA_1", C_CI_NA_1: "C_CI_NA_1", C_RD_NA_1: "C_RD_NA_1",
	C_CS_NA_1: "C_CS_NA_1", C_TS_NA_1: "C_TS_NA_1", C_RP_NA_1: "C_RP_NA_1",
	C_CD_NA_1: "C_CD_NA_1", C_TS_TA_1: "C_TS_TA_1",
}

func (t TypeID) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TypeID(%d)", uint8(t))
}

// Cause of transmission values, per the spec's principal-families table
// and 9d77v-iec104's COT block.
type Cause uint8

const (
	Periodic             Cause = 1
	Background           Cause = 2
	Spontaneous          Cause = 3
	Initialized          Cause = 4
	Request              Cause = 5
	Activation           Cause = 6
	ActivationConfirm    Cause = 7
	Deactivation         Cause = 8
	DeactivationConfirm  Cause = 9
	ActivationTerm       Cause = 10
	ReturnInfoRemote     Cause = 11
	ReturnInfoLocal      Cause = 12
	FileTransfer         Cause = 13
	InterrogatedByStation Cause = 20
	InterrogatedByGroup1  Cause = 21
	InterrogatedByGroup16 Cause = 36
	RequestByGeneralCounter Cause = 37
	RequestByGroup1Counter  Cause = 38
	RequestByGroup4Counter  Cause = 41
	UnknownTypeID       Cause = 44
	UnknownCause        Cause = 45
	UnknownCommonAddr   Cause = 46
	UnknownInfoObjAddr  Cause = 47
)

func (c Cause) String() string {
	switch c {
	case Periodic:
		return "periodic"
	case Background:
		return "background"
	case Spontaneous:
		return "spontaneous"
	case Initialized:
		return "initialized"
	case Request:
		return "request"
	case Activation:
		return "activation"
	case ActivationConfirm:
		return "activation-confirm"
	case Deactivation:
		return "deactivation"
	case DeactivationConfirm:
		return "deactivation-confirm"
	case ActivationTerm:
		return "activation-term"
	case ReturnInfoRemote:
		return "return-info-remote"
	case ReturnInfoLocal:
		return "return-info-local"
	case FileTransfer:
		return "file-transfer"
	case InterrogatedByStation:
		return "interrogated-by-station"
	case RequestByGeneralCounter:
		return "interrogated-by-general-counter"
	case UnknownTypeID:
		return "unknown-type-id"
	case UnknownCause:
		return "unknown-cause"
	case UnknownCommonAddr:
		return "unknown-common-addr"
	case UnknownInfoObjAddr:
		return "unknown-info-obj-addr"
	default:
		if c >= InterrogatedByGroup1 && c <= InterrogatedByGroup16 {
			return fmt.Sprintf("interrogated-by-group%d", c-InterrogatedByGroup1+1)
		}
		if c >= RequestByGroup1Counter && c <= RequestByGroup4Counter {
			return fmt.Sprintf("interrogated-by-counter-group%d", c-RequestByGroup1Counter+1)
		}
		return fmt.Sprintf("cause(%d)", uint8(c))
	}
}

// CauseOfTransmission is the 6-bit cause plus the P/N and T flag bits
// (spec.md §4.2: "COT's low 6 bits are the cause, bit 6 is P/N, bit 7 is T").
type CauseOfTransmission struct {
	Cause   Cause
	IsTest  bool // T bit
	Negative bool // P/N bit: true = negative confirmation
}

// Value encodes the cause octet.
func (c CauseOfTransmission) Value() byte {
	b := byte(c.Cause) & 0x3F
	if c.Negative {
		b |= 0x40
	}
	if c.IsTest {
		b |= 0x80
	}
	return b
}

// ParseCauseOfTransmission decodes the cause octet.
func ParseCauseOfTransmission(b byte) CauseOfTransmission {
	return CauseOfTransmission{
		Cause:    Cause(b & 0x3F),
		Negative: b&0x40 != 0,
		IsTest:   b&0x80 != 0,
	}
}

func (c CauseOfTransmission) String() string {
	s := c.Cause.String()
	if c.Negative {
		s += "/neg"
	}
	if c.IsTest {
		s += "/test"
	}
	return s
}

// CommonAddr addresses an RTU (station); GlobalCommonAddr is the broadcast value.
type CommonAddr uint16

// InfoObjAddr addresses a point within a station. The standard defines a
// 3-octet (24-bit) field of which only 22 bits are semantically used by
// most vendors; per spec.md §9 design note (b) this codec accepts and
// preserves all 24 bits rather than masking to 22, since the inconsistency
// is vendor-specific and masking would silently discard data some RTUs do
// populate in the high bits.
type InfoObjAddr uint32

// VariableStruct is the VSQ octet: the SQ bit plus the 7-bit object/element count.
type VariableStruct struct {
	// SQ selects sequence addressing: when true, a single IOA is given and
	// the remaining Number-1 objects have consecutive IOAs; when false,
	// each object carries its own IOA (spec.md §4.2).
	SQ     bool
	Number uint8 // 1..127
}

// Value encodes the VSQ octet.
func (v VariableStruct) Value() byte {
	b := v.Number & 0x7F
	if v.SQ {
		b |= 0x80
	}
	return b
}

// ParseVariableStruct decodes the VSQ octet.
func ParseVariableStruct(b byte) VariableStruct {
	return VariableStruct{
		SQ:     b&0x80 != 0,
		Number: b & 0x7F,
	}
}

// Identifier is the Data Unit Identifier shared by every ASDU: 4 to 6
// octets depending on Params (6 with ParamsStandard104).
type Identifier struct {
	Type       TypeID
	Variable   VariableStruct
	Coa        CauseOfTransmission
	OrigAddr   uint8 // originator address (OA), present iff Params.CauseSize==2
	CommonAddr CommonAddr
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s COT=%s OA=%d CA=%d N=%d SQ=%v",
		id.Type, id.Coa, id.OrigAddr, id.CommonAddr, id.Variable.Number, id.Variable.SQ)
}
