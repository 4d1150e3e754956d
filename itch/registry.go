package itch

import (
	"fmt"
)

// Observed price scales. The feed documentation is uncertain about these,
// which is why they live on the registered spec instead of being
// hard-coded in the decode functions.
const (
	tradePriceScale = 100000
	orderPriceScale = 100
)

// Spec describes one message type: its tag, its payload size bounds and
// how to carve the payload into a typed record.
type Spec struct {
	Tag  byte
	Name string
	// MinLen and MaxLen are the inclusive payload size bounds. Some types
	// are variable length.
	MinLen int
	MaxLen int
	// Unit is the interpretation of the type's timestamp field.
	Unit TimeUnit
	// PriceScale is the divisor applied to the type's raw price fields.
	// Zero means the type carries no price.
	PriceScale int64
	// Decode carves the payload, which has already been length checked
	// against MinLen/MaxLen, into a typed record.
	Decode func(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error)
}

// Registry maps message type tags to their specs. It is immutable after
// construction and safe for concurrent lookups.
type Registry struct {
	specs [256]*Spec
}

// NewRegistry builds a registry from specs. Exactly one spec per tag is
// allowed.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{}
	for i := range specs {
		s := specs[i]
		if s.Decode == nil {
			return nil, fmt.Errorf("spec %q (tag %q): missing decode function", s.Name, s.Tag)
		}
		if s.MinLen < 1 || s.MaxLen < s.MinLen {
			return nil, fmt.Errorf("spec %q (tag %q): invalid length bounds [%d, %d]", s.Name, s.Tag, s.MinLen, s.MaxLen)
		}
		if r.specs[s.Tag] != nil {
			return nil, fmt.Errorf("duplicate spec for tag %q", s.Tag)
		}
		r.specs[s.Tag] = &s
	}
	return r, nil
}

// Lookup returns the spec registered for tag.
func (r *Registry) Lookup(tag byte) (*Spec, bool) {
	s := r.specs[tag]
	return s, s != nil
}

// DefaultRegistry returns a registry with the message types observed in
// the PSE ITCH feeds. Adding a type means registering a spec here or on a
// custom registry; the frame reader and the dispatcher never change.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Spec{Tag: 'T', Name: "system_event", MinLen: 5, MaxLen: 5, Unit: UnitMidnightSeconds, Decode: decodeSystemEvent},
		Spec{Tag: 'S', Name: "trade", MinLen: 18, MaxLen: 22, Unit: UnitMidnightSeconds, PriceScale: tradePriceScale, Decode: decodeTrade},
		Spec{Tag: 's', Name: "trade_level1", MinLen: 18, MaxLen: 22, Unit: UnitMidnightSeconds, PriceScale: tradePriceScale, Decode: decodeTrade},
		Spec{Tag: 'A', Name: "add_order", MinLen: 30, MaxLen: 30, Unit: UnitMidnightSeconds, PriceScale: orderPriceScale, Decode: decodeAddOrder},
		Spec{Tag: 'k', Name: "quote_update", MinLen: 30, MaxLen: 30, Unit: UnitMidnightSeconds, PriceScale: orderPriceScale, Decode: decodeQuoteUpdate},
		Spec{Tag: 'e', Name: "order_executed", MinLen: 25, MaxLen: 37, Unit: UnitMidnightSeconds, PriceScale: orderPriceScale, Decode: decodeOrderExecuted},
		Spec{Tag: 'D', Name: "delete_order", MinLen: 13, MaxLen: 13, Unit: UnitMidnightSeconds, Decode: decodeDeleteOrder},
		Spec{Tag: 'U', Name: "replace_order", MinLen: 25, MaxLen: 25, Unit: UnitMidnightSeconds, Decode: decodeReplaceOrder},
		Spec{Tag: 'H', Name: "trading_status", MinLen: 11, MaxLen: 11, Unit: UnitMidnightSeconds, Decode: decodeTradingStatus},
		Spec{Tag: 'L', Name: "listing", MinLen: 17, MaxLen: 17, Unit: UnitMidnightSeconds, Decode: decodeListing},
		Spec{Tag: 'R', Name: "trade_report", MinLen: 13, MaxLen: 90, Unit: UnitMidnightSeconds, Decode: decodeTradeReport},
		Spec{Tag: 'f', Name: "unknown_f", MinLen: 24, MaxLen: 24, Unit: UnitMidnightSeconds, Decode: decodeOpaque},
		Spec{Tag: 'M', Name: "unknown_M", MinLen: 25, MaxLen: 25, Unit: UnitMidnightSeconds, Decode: decodeOpaque},
	)
	if err != nil {
		// The default table is static; a bad entry is a programming error.
		panic(err)
	}
	return r
}

func decodeSystemEvent(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := SystemEvent{RecordHeader: hdr}
	counter, err := DecodeUint(p, 1, 4)
	if err != nil {
		return nil, fieldErr("counter", err)
	}
	rec.Counter = uint32(counter)
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	return rec, nil
}

// Trade layout: type(1), timestamp(4), side(1), symbol(8), quantity(4),
// price(4). The price field is only present on the 22 byte variant.
func decodeTrade(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := Trade{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.Side, err = DecodeIndicator(p, 5); err != nil {
		return nil, fieldErr("side", err)
	}
	if rec.Symbol, err = DecodeText(p, 6, 8); err != nil {
		return nil, fieldErr("symbol", err)
	}
	qty, err := DecodeUint(p, 14, 4)
	if err != nil {
		return nil, fieldErr("quantity", err)
	}
	rec.Quantity = uint32(qty)
	if len(p) >= 22 {
		price, err := DecodePrice(p, 18, 4, cfg.PriceScale)
		if err != nil {
			return nil, fieldErr("price", err)
		}
		rec.Price = &price
	}
	return rec, nil
}

// Add order layout: type(1), timestamp(4), order id(8), symbol(8),
// quantity(4), price(4), side(1).
func decodeAddOrder(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := AddOrder{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.OrderID, err = DecodeUint(p, 5, 8); err != nil {
		return nil, fieldErr("order_id", err)
	}
	if rec.Symbol, err = DecodeText(p, 13, 8); err != nil {
		return nil, fieldErr("symbol", err)
	}
	qty, err := DecodeUint(p, 21, 4)
	if err != nil {
		return nil, fieldErr("quantity", err)
	}
	rec.Quantity = uint32(qty)
	if rec.Price, err = DecodePrice(p, 25, 4, cfg.PriceScale); err != nil {
		return nil, fieldErr("price", err)
	}
	if rec.Side, err = DecodeIndicator(p, 29); err != nil {
		return nil, fieldErr("side", err)
	}
	return rec, nil
}

func decodeQuoteUpdate(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec, err := decodeAddOrder(p, hdr, cfg)
	if err != nil {
		return nil, err
	}
	a := rec.(AddOrder)
	return QuoteUpdate{
		RecordHeader: a.RecordHeader,
		Timestamp:    a.Timestamp,
		OrderID:      a.OrderID,
		Symbol:       a.Symbol,
		Quantity:     a.Quantity,
		Price:        a.Price,
		Side:         a.Side,
	}, nil
}

func decodeOrderExecuted(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := OrderExecuted{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.OrderID, err = DecodeUint(p, 5, 8); err != nil {
		return nil, fieldErr("order_id", err)
	}
	qty, err := DecodeUint(p, 13, 4)
	if err != nil {
		return nil, fieldErr("quantity", err)
	}
	rec.Quantity = uint32(qty)
	if rec.Price, err = DecodePrice(p, 17, 4, cfg.PriceScale); err != nil {
		return nil, fieldErr("price", err)
	}
	return rec, nil
}

func decodeDeleteOrder(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := DeleteOrder{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.OrderID, err = DecodeUint(p, 5, 8); err != nil {
		return nil, fieldErr("order_id", err)
	}
	return rec, nil
}

func decodeReplaceOrder(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := ReplaceOrder{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.OldOrderID, err = DecodeUint(p, 5, 8); err != nil {
		return nil, fieldErr("old_order_id", err)
	}
	if rec.OrderID, err = DecodeUint(p, 13, 8); err != nil {
		return nil, fieldErr("order_id", err)
	}
	qty, err := DecodeUint(p, 21, 4)
	if err != nil {
		return nil, fieldErr("quantity", err)
	}
	rec.Quantity = uint32(qty)
	return rec, nil
}

func decodeTradingStatus(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := TradingStatus{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.Status, err = DecodeText(p, 5, 6); err != nil {
		return nil, fieldErr("status", err)
	}
	return rec, nil
}

func decodeListing(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := Listing{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.Symbol, err = DecodeText(p, 5, 8); err != nil {
		return nil, fieldErr("symbol", err)
	}
	rec.Rest = append([]byte(nil), p[13:]...)
	return rec, nil
}

func decodeTradeReport(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := TradeReport{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	if rec.OrderID, err = DecodeUint(p, 5, 8); err != nil {
		return nil, fieldErr("order_id", err)
	}
	rec.Rest = append([]byte(nil), p[13:]...)
	return rec, nil
}

func decodeOpaque(p []byte, hdr RecordHeader, cfg DecodeConfig) (Record, error) {
	rec := Opaque{RecordHeader: hdr}
	var err error
	if rec.Timestamp, err = DecodeTimestamp(p, 1, 4, cfg.Unit, cfg.Session); err != nil {
		return nil, fieldErr("timestamp", err)
	}
	rec.Rest = append([]byte(nil), p[5:]...)
	return rec, nil
}
