package itch

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedLength is returned when the stream ends inside a length
	// prefix. The stream is unrecoverable past this point.
	ErrTruncatedLength = errors.New("stream truncated inside length prefix")
	// ErrTruncatedPayload is returned when the stream ends before a frame's
	// declared payload length has been read.
	ErrTruncatedPayload = errors.New("stream truncated inside frame payload")
	// ErrWindowOutOfBounds is returned by field decoders when the requested
	// byte window does not lie within the payload.
	ErrWindowOutOfBounds = errors.New("field window outside payload bounds")
)

// FrameError is a fatal framing failure. Byte offsets after the failure
// are meaningless, so the frame reader terminates the sequence.
type FrameError struct {
	// Offset is the byte offset of the frame's length prefix in the source.
	Offset int64
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame at offset %d: %v", e.Offset, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// FieldError reports which field of a message failed to decode.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
