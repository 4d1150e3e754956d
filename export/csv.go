package export

import (
	"encoding/csv"
	"encoding/hex"
	"io"
	"strconv"
	"time"

	"github.com/danielum/itchfeed/itch"
)

var csvHeader = []string{
	"seq", "type", "raw_length", "timestamp", "counter", "symbol", "side",
	"quantity", "price", "order_id", "old_order_id", "status", "reason",
	"field", "raw",
}

// CSVWriter writes one row per record with a fixed column set; columns
// not applicable to a record's type are left empty. The header row is
// written ahead of the first record.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter returns a writer emitting CSV rows to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write appends one row for rec.
func (c *CSVWriter) Write(rec itch.Record) error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(csvRow(Flatten(rec)))
}

// Flush writes buffered rows to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func csvRow(e Envelope) []string {
	var ts string
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp.Format(time.RFC3339Nano)
	}
	return []string{
		strconv.FormatUint(e.Seq, 10),
		e.Type,
		strconv.Itoa(e.RawLen),
		ts,
		fmtU32(e.Counter),
		e.Symbol,
		e.Side,
		fmtU32(e.Quantity),
		e.Price,
		fmtU64(e.OrderID),
		fmtU64(e.OldOrderID),
		e.Status,
		e.Reason,
		e.Field,
		hex.EncodeToString(e.Raw),
	}
}

func fmtU32(v *uint32) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func fmtU64(v *uint64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(*v, 10)
}
