// Package export persists decoded records: CSV for spreadsheets, JSON
// lines for downstream tooling, and a compact msgpack replay log.
package export

import (
	"time"

	"github.com/danielum/itchfeed/itch"
)

// Envelope is the flattened, sink-agnostic view of one record. Optional
// scalars are pointers so an absent field is distinguishable from a zero
// value. The short msgpack keys keep the replay log compact.
type Envelope struct {
	Seq        uint64    `msgpack:"q"`
	Type       string    `msgpack:"T"`
	Tag        byte      `msgpack:"g,omitempty"`
	RawLen     int       `msgpack:"l"`
	Timestamp  time.Time `msgpack:"t"`
	Counter    *uint32   `msgpack:"c,omitempty"`
	Symbol     string    `msgpack:"S,omitempty"`
	Side       string    `msgpack:"d,omitempty"`
	Quantity   *uint32   `msgpack:"n,omitempty"`
	Price      string    `msgpack:"p,omitempty"`
	OrderID    *uint64   `msgpack:"o,omitempty"`
	OldOrderID *uint64   `msgpack:"O,omitempty"`
	Status     string    `msgpack:"h,omitempty"`
	Raw        []byte    `msgpack:"r,omitempty"`
	Reason     string    `msgpack:"e,omitempty"`
	Field      string    `msgpack:"f,omitempty"`
}

func u32(v uint32) *uint32 { return &v }
func u64(v uint64) *uint64 { return &v }

// Flatten maps a record onto the envelope. Custom record types from an
// extended registry come out with Type "custom" and only the header
// fields filled in.
func Flatten(rec itch.Record) Envelope {
	hdr := rec.Header()
	e := Envelope{
		Seq:    hdr.Seq,
		Tag:    hdr.Tag,
		RawLen: hdr.RawLen,
	}

	switch r := rec.(type) {
	case itch.SystemEvent:
		e.Type = "system_event"
		e.Timestamp = r.Timestamp
		e.Counter = u32(r.Counter)
	case itch.Trade:
		e.Type = "trade"
		if hdr.Tag == 's' {
			e.Type = "trade_level1"
		}
		e.Timestamp = r.Timestamp
		e.Symbol = r.Symbol
		e.Side = string(r.Side)
		e.Quantity = u32(r.Quantity)
		if r.Price != nil {
			e.Price = r.Price.String()
		}
	case itch.AddOrder:
		e.Type = "add_order"
		e.Timestamp = r.Timestamp
		e.OrderID = u64(r.OrderID)
		e.Symbol = r.Symbol
		e.Quantity = u32(r.Quantity)
		e.Price = r.Price.String()
		e.Side = string(r.Side)
	case itch.QuoteUpdate:
		e.Type = "quote_update"
		e.Timestamp = r.Timestamp
		e.OrderID = u64(r.OrderID)
		e.Symbol = r.Symbol
		e.Quantity = u32(r.Quantity)
		e.Price = r.Price.String()
		e.Side = string(r.Side)
	case itch.OrderExecuted:
		e.Type = "order_executed"
		e.Timestamp = r.Timestamp
		e.OrderID = u64(r.OrderID)
		e.Quantity = u32(r.Quantity)
		e.Price = r.Price.String()
	case itch.DeleteOrder:
		e.Type = "delete_order"
		e.Timestamp = r.Timestamp
		e.OrderID = u64(r.OrderID)
	case itch.ReplaceOrder:
		e.Type = "replace_order"
		e.Timestamp = r.Timestamp
		e.OldOrderID = u64(r.OldOrderID)
		e.OrderID = u64(r.OrderID)
		e.Quantity = u32(r.Quantity)
	case itch.TradingStatus:
		e.Type = "trading_status"
		e.Timestamp = r.Timestamp
		e.Status = r.Status
	case itch.Listing:
		e.Type = "listing"
		e.Timestamp = r.Timestamp
		e.Symbol = r.Symbol
		e.Raw = r.Rest
	case itch.TradeReport:
		e.Type = "trade_report"
		e.Timestamp = r.Timestamp
		e.OrderID = u64(r.OrderID)
		e.Raw = r.Rest
	case itch.Opaque:
		e.Type = "opaque"
		e.Timestamp = r.Timestamp
		e.Raw = r.Rest
	case *itch.Unparsed:
		e.Type = "unparsed"
		e.Raw = r.Payload
		e.Reason = string(r.Reason)
		e.Field = r.Field
	default:
		e.Type = "custom"
	}
	return e
}
