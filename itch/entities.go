package itch

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordHeader carries the fields common to every decoded record.
type RecordHeader struct {
	// Seq is the zero-based position of the message in the stream. It is
	// strictly increasing and gapless, regardless of decode outcome.
	Seq uint64
	// Tag is the one-byte message type discriminator. Zero for an empty
	// payload.
	Tag byte
	// RawLen is the framed payload length in bytes.
	RawLen int
}

// Header implements Record.
func (h RecordHeader) Header() RecordHeader { return h }

// Record is a single decoded message. Exactly one record is produced per
// frame: a typed record on success, or *Unparsed when the message could
// not be decoded.
type Record interface {
	Header() RecordHeader
}

// SideIndicator is the single-byte side/venue marker carried by trade and
// order messages.
type SideIndicator byte

const (
	SideBuy      SideIndicator = 'B'
	SideSell     SideIndicator = 'S'
	SideNational SideIndicator = 'N'
	SideOffer    SideIndicator = 'O'
	SideTrade    SideIndicator = 'T'
)

// Recognized reports whether the byte value is in the known indicator table.
func (s SideIndicator) Recognized() bool {
	switch s {
	case SideBuy, SideSell, SideNational, SideOffer, SideTrade:
		return true
	}
	return false
}

// Label returns a human readable name for the indicator. Unknown byte
// values map to "unrecognized"; the raw byte stays available on the value
// itself for diagnostics.
func (s SideIndicator) Label() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	case SideNational:
		return "National"
	case SideOffer:
		return "Offer"
	case SideTrade:
		return "Trade"
	}
	return "unrecognized"
}

// SystemEvent is the 'T' sync message, emitted once per feed second.
type SystemEvent struct {
	RecordHeader
	Counter   uint32
	Timestamp time.Time
}

// Trade is an executed trade ('S', and the level-1 variant 's').
type Trade struct {
	RecordHeader
	Timestamp time.Time
	Side      SideIndicator
	Symbol    string
	Quantity  uint32
	// Price is nil on the short (18 byte) message variant that carries no
	// price field.
	Price *decimal.Decimal
}

// AddOrder is the 'A' message placing a new order on the book.
type AddOrder struct {
	RecordHeader
	Timestamp time.Time
	OrderID   uint64
	Symbol    string
	Quantity  uint32
	Price     decimal.Decimal
	Side      SideIndicator
}

// QuoteUpdate is the 'k' order book update. It shares the add-order layout.
type QuoteUpdate struct {
	RecordHeader
	Timestamp time.Time
	OrderID   uint64
	Symbol    string
	Quantity  uint32
	Price     decimal.Decimal
	Side      SideIndicator
}

// OrderExecuted is the 'e' message reporting a (possibly partial) fill.
type OrderExecuted struct {
	RecordHeader
	Timestamp time.Time
	OrderID   uint64
	Quantity  uint32
	Price     decimal.Decimal
}

// DeleteOrder is the 'D' message removing an order from the book.
type DeleteOrder struct {
	RecordHeader
	Timestamp time.Time
	OrderID   uint64
}

// ReplaceOrder is the 'U' message replacing an order with a new one.
// Fields not present on the wire (symbol, side) carry over from the
// replaced order; that is the consumer's job, not the decoder's.
type ReplaceOrder struct {
	RecordHeader
	Timestamp  time.Time
	OldOrderID uint64
	OrderID    uint64
	Quantity   uint32
}

// TradingStatus is the 'H' halt/resume message.
type TradingStatus struct {
	RecordHeader
	Timestamp time.Time
	Status    string
}

// Listing is the 'L' listing/IPO message.
type Listing struct {
	RecordHeader
	Timestamp time.Time
	Symbol    string
	Rest      []byte
}

// TradeReport is the venue specific 'R' message. Only the leading fields
// are understood; the remaining bytes are kept verbatim so the layout can
// be worked out offline.
type TradeReport struct {
	RecordHeader
	Timestamp time.Time
	OrderID   uint64
	Rest      []byte
}

// Opaque is a registered message type whose body layout beyond the common
// timestamp prefix is not yet known ('f', 'M'). The body is preserved.
type Opaque struct {
	RecordHeader
	Timestamp time.Time
	Rest      []byte
}

// FailureReason classifies why a message could not be decoded.
type FailureReason string

const (
	ReasonEmptyPayload     FailureReason = "empty_payload"
	ReasonUnknownType      FailureReason = "unknown_type"
	ReasonLengthOutOfRange FailureReason = "length_out_of_range"
	ReasonFieldDecode      FailureReason = "field_decode_error"
)

// Unparsed is the decode-failure variant. The payload is preserved
// verbatim so the message can be inspected and the registry extended
// later; it is never silently dropped.
type Unparsed struct {
	RecordHeader
	Payload []byte
	Reason  FailureReason
	// Field names the field that failed to decode. Only set for
	// ReasonFieldDecode.
	Field string
	// Err is the underlying field decode error, if any.
	Err error
}
