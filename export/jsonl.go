package export

import (
	"io"
	"time"

	"github.com/mailru/easyjson/jwriter"

	"github.com/danielum/itchfeed/itch"
)

// JSONLWriter writes one JSON object per line. Fields not applicable to
// a record's type are omitted entirely rather than emitted as null, and
// raw bytes are base64 encoded the way encoding/json renders []byte.
type JSONLWriter struct {
	w io.Writer
}

// NewJSONLWriter returns a writer emitting JSON lines to w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

// Write appends one line for rec.
func (j *JSONLWriter) Write(rec itch.Record) error {
	e := Flatten(rec)

	jw := &jwriter.Writer{}
	obj := objWriter{jw: jw}

	jw.RawByte('{')
	obj.key("seq")
	jw.Uint64(e.Seq)
	obj.key("type")
	jw.String(e.Type)
	obj.key("raw_length")
	jw.Int(e.RawLen)
	if !e.Timestamp.IsZero() {
		obj.key("timestamp")
		jw.String(e.Timestamp.Format(time.RFC3339Nano))
	}
	if e.Counter != nil {
		obj.key("counter")
		jw.Uint32(*e.Counter)
	}
	if e.Symbol != "" {
		obj.key("symbol")
		jw.String(e.Symbol)
	}
	if e.Side != "" {
		obj.key("side")
		jw.String(e.Side)
	}
	if e.Quantity != nil {
		obj.key("quantity")
		jw.Uint32(*e.Quantity)
	}
	if e.Price != "" {
		obj.key("price")
		jw.String(e.Price)
	}
	if e.OrderID != nil {
		obj.key("order_id")
		jw.Uint64(*e.OrderID)
	}
	if e.OldOrderID != nil {
		obj.key("old_order_id")
		jw.Uint64(*e.OldOrderID)
	}
	if e.Status != "" {
		obj.key("status")
		jw.String(e.Status)
	}
	if e.Reason != "" {
		obj.key("reason")
		jw.String(e.Reason)
	}
	if e.Field != "" {
		obj.key("field")
		jw.String(e.Field)
	}
	if len(e.Raw) > 0 {
		obj.key("raw")
		jw.Base64Bytes(e.Raw)
	}
	jw.RawByte('}')
	jw.RawByte('\n')

	_, err := jw.DumpTo(j.w)
	return err
}

// objWriter tracks comma placement inside one JSON object.
type objWriter struct {
	jw *jwriter.Writer
	n  int
}

func (o *objWriter) key(name string) {
	if o.n > 0 {
		o.jw.RawByte(',')
	}
	o.n++
	o.jw.String(name)
	o.jw.RawByte(':')
}
