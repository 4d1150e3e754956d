package itch

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUint(t *testing.T) {
	p := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	for _, tc := range []struct {
		name string
		off  int
		n    int
		want uint64
	}{
		{"one byte", 0, 1, 0x01},
		{"two bytes", 1, 2, 0x0203},
		{"four bytes", 2, 4, 0x03040506},
		{"eight bytes", 0, 8, 0x0102030405060708},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := DecodeUint(p, tc.off, tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}

	_, err := DecodeUint(p, 0, 3)
	assert.Error(t, err)

	_, err = DecodeUint(p, 6, 4)
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))

	_, err = DecodeUint(p, -1, 2)
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))
}

func TestDecodeText(t *testing.T) {
	s, err := DecodeText([]byte("STOCK   "), 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "STOCK", s)

	// trimming is idempotent on already-trimmed output
	s, err = DecodeText([]byte("STOCK"), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "STOCK", s)

	s, err = DecodeText([]byte("        "), 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	// NUL padding is also stripped
	s, err = DecodeText([]byte{'A', 'B', 0x00, 0x00}, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, "AB", s)

	// non-printable bytes inside the field are preserved, not an error
	s, err = DecodeText([]byte{0x01, 'A', ' '}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "\x01A", s)

	_, err = DecodeText([]byte("AB"), 0, 3)
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))
}

func TestDecodePrice(t *testing.T) {
	// 0x00007E90 = 32400, scale 100000 -> 0.324
	p := []byte{0x00, 0x00, 0x7E, 0x90}
	d, err := DecodePrice(p, 0, 4, 100000)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("0.324")), "got %s", d)

	d, err = DecodePrice([]byte{0x00, 0x00, 0x30, 0x39}, 0, 4, 100)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("123.45")), "got %s", d)

	_, err = DecodePrice(p, 0, 4, 0)
	assert.Error(t, err)

	_, err = DecodePrice(p, 2, 4, 100)
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))
}

func TestDecodeTimestamp(t *testing.T) {
	session := civil.Date{Year: 2024, Month: time.January, Day: 8}
	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, 34200) // 09:30:00

	ts, err := DecodeTimestamp(raw, 0, 4, UnitMidnightSeconds, session)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC), ts)

	when := time.Date(2024, 1, 8, 9, 20, 36, 0, time.UTC)

	epoch := make([]byte, 4)
	binary.BigEndian.PutUint32(epoch, uint32(when.Unix()))
	ts, err = DecodeTimestamp(epoch, 0, 4, UnitSeconds, civil.Date{})
	require.NoError(t, err)
	assert.Equal(t, when, ts)

	wide := make([]byte, 8)
	binary.BigEndian.PutUint64(wide, uint64(when.UnixMilli()))
	ts, err = DecodeTimestamp(wide, 0, 8, UnitMilliseconds, civil.Date{})
	require.NoError(t, err)
	assert.Equal(t, when, ts)

	binary.BigEndian.PutUint64(wide, uint64(when.UnixMicro()))
	ts, err = DecodeTimestamp(wide, 0, 8, UnitMicroseconds, civil.Date{})
	require.NoError(t, err)
	assert.Equal(t, when, ts)

	binary.BigEndian.PutUint64(wide, uint64(when.UnixNano()))
	ts, err = DecodeTimestamp(wide, 0, 8, UnitNanoseconds, civil.Date{})
	require.NoError(t, err)
	assert.Equal(t, when, ts)

	_, err = DecodeTimestamp(raw, 2, 4, UnitSeconds, civil.Date{})
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))
}

func TestDecodeIndicator(t *testing.T) {
	side, err := DecodeIndicator([]byte{'N'}, 0)
	require.NoError(t, err)
	assert.True(t, side.Recognized())
	assert.Equal(t, "National", side.Label())

	side, err = DecodeIndicator([]byte{'Z'}, 0)
	require.NoError(t, err)
	assert.False(t, side.Recognized())
	assert.Equal(t, "unrecognized", side.Label())
	// the raw byte stays available for diagnostics
	assert.EqualValues(t, 'Z', byte(side))

	_, err = DecodeIndicator([]byte{}, 0)
	assert.True(t, errors.Is(err, ErrWindowOutOfBounds))
}
