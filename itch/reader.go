package itch

import (
	"fmt"
	"io"
)

// DefaultLengthPrefixSize is the length prefix width used by the observed
// feeds: a 2 byte big-endian unsigned payload length.
const DefaultLengthPrefixSize = 2

// maxPayloadLen bounds a single frame's payload so a corrupt length field
// read with a wide prefix cannot trigger an absurd allocation.
const maxPayloadLen = 1<<31 - 1

// RawFrame is one length-delimited unit extracted from the stream. The
// payload is owned by the frame and not reused by the reader.
type RawFrame struct {
	Payload []byte
	// StreamOffset is the byte offset of the frame's length prefix in the
	// source, for error reporting.
	StreamOffset int64
	// Seq is the frame's zero-based position in the stream. Indices are
	// assigned here, before any parallel decode, so output ordering can be
	// restored downstream.
	Seq uint64
}

// FrameReader splits a byte source into length-prefixed frames. It does
// not interpret payload contents. The sequence it produces is lazy,
// finite and not restartable.
type FrameReader struct {
	r         io.Reader
	prefixLen int
	prefix    []byte
	offset    int64
	seq       uint64
	err       error
}

// NewFrameReader returns a reader that consumes r frame by frame.
// prefixLen is the length field width in bytes (big-endian unsigned,
// 1 to 8).
func NewFrameReader(r io.Reader, prefixLen int) (*FrameReader, error) {
	if prefixLen < 1 || prefixLen > 8 {
		return nil, fmt.Errorf("invalid length prefix size %d", prefixLen)
	}
	return &FrameReader{
		r:         r,
		prefixLen: prefixLen,
		prefix:    make([]byte, prefixLen),
	}, nil
}

// Next reads the next frame. It returns io.EOF when the stream ends
// cleanly at a frame boundary. A stream that ends inside a length prefix
// or inside a payload yields a *FrameError wrapping ErrTruncatedLength or
// ErrTruncatedPayload; framing errors are fatal and the same error is
// returned on every subsequent call.
func (fr *FrameReader) Next() (RawFrame, error) {
	if fr.err != nil {
		return RawFrame{}, fr.err
	}

	start := fr.offset
	n, err := io.ReadFull(fr.r, fr.prefix)
	switch err {
	case nil:
	case io.EOF:
		fr.err = io.EOF
		return RawFrame{}, io.EOF
	case io.ErrUnexpectedEOF:
		// At least one byte arrived: an ambiguous partial frame.
		fr.err = &FrameError{Offset: start, Err: ErrTruncatedLength}
		return RawFrame{}, fr.err
	default:
		fr.err = &FrameError{Offset: start, Err: err}
		return RawFrame{}, fr.err
	}
	fr.offset += int64(n)

	var length uint64
	for _, b := range fr.prefix {
		length = length<<8 | uint64(b)
	}
	if length > maxPayloadLen {
		fr.err = &FrameError{Offset: start, Err: fmt.Errorf("payload length %d exceeds limit", length)}
		return RawFrame{}, fr.err
	}

	payload := make([]byte, length)
	n, err = io.ReadFull(fr.r, payload)
	if err != nil {
		fr.err = &FrameError{Offset: start, Err: ErrTruncatedPayload}
		return RawFrame{}, fr.err
	}
	fr.offset += int64(n)

	frame := RawFrame{
		Payload:      payload,
		StreamOffset: start,
		Seq:          fr.seq,
	}
	fr.seq++
	return frame, nil
}
