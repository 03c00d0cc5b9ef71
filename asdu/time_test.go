// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package asdu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCP56Time2aRoundTrip(t *testing.T) {
	loc := time.UTC
	cases := []time.Time{
		time.Date(2026, time.March, 5, 14, 32, 7, 250e6, loc),
		time.Date(2000, time.January, 1, 0, 0, 0, 0, loc),
		time.Date(2099, time.December, 31, 23, 59, 59, 999e6, loc),
	}
	for _, want := range cases {
		enc := CP56Time2a(want, loc)
		require.Len(t, enc, 7)
		got, invalid, _, err := ParseCP56Time2a(enc, loc)
		require.NoError(t, err)
		require.False(t, invalid)
		require.Equal(t, want.Year(), got.Year())
		require.Equal(t, want.Month(), got.Month())
		require.Equal(t, want.Day(), got.Day())
		require.Equal(t, want.Hour(), got.Hour())
		require.Equal(t, want.Minute(), got.Minute())
		require.Equal(t, want.Second(), got.Second())
		require.Equal(t, want.Nanosecond()/1e6, got.Nanosecond()/1e6)
	}
}

func TestCP56Time2aInvalidBit(t *testing.T) {
	enc := CP56Time2a(time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC), time.UTC)
	enc[2] |= 0x80 // set IV
	_, invalid, _, err := ParseCP56Time2a(enc, time.UTC)
	require.NoError(t, err)
	require.True(t, invalid)
}

func TestCP56Time2aSUBitPreserved(t *testing.T) {
	enc := CP56Time2a(time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC), time.UTC)
	enc[3] |= 0x80 // set SU
	_, _, su, err := ParseCP56Time2a(enc, time.UTC)
	require.NoError(t, err)
	require.True(t, su)

	reenc := cp56BytesSU(time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC), time.UTC, su)
	require.Equal(t, byte(0x80), reenc[3]&0x80)
}

func TestCP16Time2aRoundTrip(t *testing.T) {
	for _, msec := range []uint16{0, 1234, 59999} {
		enc := CP16Time2a(msec)
		got, err := ParseCP16Time2a(enc)
		require.NoError(t, err)
		require.Equal(t, msec, got)
	}
}

func TestParseCP56Time2aTooShort(t *testing.T) {
	_, _, _, err := ParseCP56Time2a([]byte{1, 2, 3}, time.UTC)
	require.Error(t, err)
}
