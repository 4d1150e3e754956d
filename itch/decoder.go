package itch

import (
	"errors"

	"cloud.google.com/go/civil"
)

// Decoder turns raw frames into records using a registry. Decoding is a
// pure, one-shot function per frame: there is nothing transient to retry
// against a fixed byte buffer, and the decoder keeps no state across
// frames.
type Decoder struct {
	registry *Registry
	session  civil.Date
}

// NewDecoder returns a decoder using registry. Intraday timestamps are
// anchored to session at UTC midnight.
func NewDecoder(registry *Registry, session civil.Date) *Decoder {
	return &Decoder{registry: registry, session: session}
}

// Decode produces exactly one record for the frame: the typed record on
// success, or *Unparsed carrying the verbatim payload and a failure
// reason. It never drops or duplicates input, so one corrupt message
// cannot stall the stream.
func (d *Decoder) Decode(f RawFrame) Record {
	hdr := RecordHeader{Seq: f.Seq, RawLen: len(f.Payload)}

	if len(f.Payload) == 0 {
		return &Unparsed{RecordHeader: hdr, Reason: ReasonEmptyPayload}
	}
	hdr.Tag = f.Payload[0]

	spec, ok := d.registry.Lookup(hdr.Tag)
	if !ok {
		return &Unparsed{RecordHeader: hdr, Payload: f.Payload, Reason: ReasonUnknownType}
	}
	if len(f.Payload) < spec.MinLen || len(f.Payload) > spec.MaxLen {
		return &Unparsed{RecordHeader: hdr, Payload: f.Payload, Reason: ReasonLengthOutOfRange}
	}

	rec, err := spec.Decode(f.Payload, hdr, DecodeConfig{
		Unit:       spec.Unit,
		PriceScale: spec.PriceScale,
		Session:    d.session,
	})
	if err != nil {
		u := &Unparsed{RecordHeader: hdr, Payload: f.Payload, Reason: ReasonFieldDecode, Err: err}
		var fe *FieldError
		if errors.As(err, &fe) {
			u.Field = fe.Field
		}
		return u
	}
	return rec
}
