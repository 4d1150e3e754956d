package itch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame2 prefixes payload with the standard 2 byte big-endian length.
func frame2(payload []byte) []byte {
	b := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(b, uint16(len(payload)))
	copy(b[2:], payload)
	return b
}

func TestFrameReaderRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{'T', 0, 0, 0, 1},
		{},
		bytes.Repeat([]byte{0xAB}, 90),
		{'Z'},
		bytes.Repeat([]byte{0x00}, 65535),
	}
	var stream bytes.Buffer
	for _, p := range payloads {
		stream.Write(frame2(p))
	}

	fr, err := NewFrameReader(&stream, 2)
	require.NoError(t, err)

	var offset int64
	for i, want := range payloads {
		f, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, want, f.Payload)
		assert.EqualValues(t, i, f.Seq)
		assert.Equal(t, offset, f.StreamOffset)
		offset += int64(2 + len(want))
	}

	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)
	// the sequence stays terminated
	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameReaderEmptyStream(t *testing.T) {
	fr, err := NewFrameReader(bytes.NewReader(nil), 2)
	require.NoError(t, err)
	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameReaderTruncatedLength(t *testing.T) {
	stream := append(frame2([]byte{'T', 0, 0, 0, 1}), 0x00)

	fr, err := NewFrameReader(bytes.NewReader(stream), 2)
	require.NoError(t, err)

	_, err = fr.Next()
	require.NoError(t, err)

	_, err = fr.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedLength))
	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	assert.EqualValues(t, 7, fe.Offset)

	// framing errors are fatal and sticky
	_, err2 := fr.Next()
	assert.Equal(t, err, err2)
}

func TestFrameReaderTruncatedPayload(t *testing.T) {
	stream := []byte{0x00, 0x0A, 0x01, 0x02, 0x03}

	fr, err := NewFrameReader(bytes.NewReader(stream), 2)
	require.NoError(t, err)

	_, err = fr.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedPayload))
	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	assert.EqualValues(t, 0, fe.Offset)
}

func TestFrameReaderPrefixWidths(t *testing.T) {
	payload := []byte{'T', 0, 0, 0, 42}

	t.Run("one byte", func(t *testing.T) {
		stream := append([]byte{byte(len(payload))}, payload...)
		fr, err := NewFrameReader(bytes.NewReader(stream), 1)
		require.NoError(t, err)
		f, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, payload, f.Payload)
	})

	t.Run("four bytes", func(t *testing.T) {
		stream := make([]byte, 4+len(payload))
		binary.BigEndian.PutUint32(stream, uint32(len(payload)))
		copy(stream[4:], payload)
		fr, err := NewFrameReader(bytes.NewReader(stream), 4)
		require.NoError(t, err)
		f, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, payload, f.Payload)
	})
}

func TestFrameReaderInvalidPrefixSize(t *testing.T) {
	_, err := NewFrameReader(bytes.NewReader(nil), 0)
	assert.Error(t, err)
	_, err = NewFrameReader(bytes.NewReader(nil), 9)
	assert.Error(t, err)
}
