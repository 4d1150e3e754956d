package export

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/danielum/itchfeed/itch"
)

// ReplayWriter appends msgpack-encoded envelopes to a stream. The result
// is a compact replay log that keeps every decoded field without keeping
// the raw feed around.
type ReplayWriter struct {
	enc *msgpack.Encoder
}

// NewReplayWriter returns a writer emitting envelopes to w.
func NewReplayWriter(w io.Writer) *ReplayWriter {
	return &ReplayWriter{enc: msgpack.NewEncoder(w)}
}

// Write appends one envelope for rec.
func (r *ReplayWriter) Write(rec itch.Record) error {
	return r.enc.Encode(Flatten(rec))
}

// ReplayReader iterates a stream written by ReplayWriter.
type ReplayReader struct {
	dec *msgpack.Decoder
}

// NewReplayReader returns a reader over the replay log in rd.
func NewReplayReader(rd io.Reader) *ReplayReader {
	return &ReplayReader{dec: msgpack.NewDecoder(rd)}
}

// Next returns the next envelope, or io.EOF at the end of the log.
func (r *ReplayReader) Next() (Envelope, error) {
	var e Envelope
	if err := r.dec.Decode(&e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
