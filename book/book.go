// Package book reconstructs per-symbol level 2 depth from the decoded
// order flow. It is a consumer of the decoder's record stream, not part
// of the decoder: all book state lives here.
package book

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielum/itchfeed/itch"
)

// Level is one aggregated price level.
type Level struct {
	Price    decimal.Decimal
	Quantity int64
}

// Snapshot is the top-of-book view for one symbol at one feed tick.
type Snapshot struct {
	Symbol    string
	Timestamp time.Time
	Bids      []Level
	Asks      []Level
}

type order struct {
	symbol string
	side   itch.SideIndicator
	price  decimal.Decimal
	qty    int64
}

// Book tracks live orders keyed by order id. Orders are removed
// explicitly on delete and on execute-to-zero, so the book does not grow
// without bound over a session.
type Book struct {
	depth  int
	orders map[uint64]*order
}

// New returns an empty book that snapshots the top depth levels per side.
func New(depth int) *Book {
	if depth <= 0 {
		depth = 5
	}
	return &Book{depth: depth, orders: make(map[uint64]*order)}
}

// Apply folds one record into the book. A SystemEvent tick returns the
// current snapshots; every other record returns nil. Failure records are
// ignored: the book only consumes what decoded cleanly.
func (b *Book) Apply(rec itch.Record) []Snapshot {
	switch r := rec.(type) {
	case itch.AddOrder:
		b.orders[r.OrderID] = &order{
			symbol: r.Symbol,
			side:   r.Side,
			price:  r.Price,
			qty:    int64(r.Quantity),
		}
	case itch.OrderExecuted:
		if o, ok := b.orders[r.OrderID]; ok {
			o.qty -= int64(r.Quantity)
			if o.qty <= 0 {
				delete(b.orders, r.OrderID)
			}
		}
	case itch.DeleteOrder:
		delete(b.orders, r.OrderID)
	case itch.ReplaceOrder:
		if o, ok := b.orders[r.OldOrderID]; ok {
			delete(b.orders, r.OldOrderID)
			// symbol, side and price carry over from the replaced order
			b.orders[r.OrderID] = &order{
				symbol: o.symbol,
				side:   o.side,
				price:  o.price,
				qty:    int64(r.Quantity),
			}
		}
	case itch.SystemEvent:
		return b.Snapshots(r.Timestamp)
	}
	return nil
}

// Live returns the number of orders currently on the book.
func (b *Book) Live() int {
	return len(b.orders)
}

// Snapshots aggregates the live orders into sorted top-N levels per
// symbol, symbols in lexical order.
func (b *Book) Snapshots(ts time.Time) []Snapshot {
	type agg struct {
		bids map[string]*Level
		asks map[string]*Level
	}
	bySymbol := make(map[string]*agg)
	for _, o := range b.orders {
		a := bySymbol[o.symbol]
		if a == nil {
			a = &agg{bids: make(map[string]*Level), asks: make(map[string]*Level)}
			bySymbol[o.symbol] = a
		}
		side := a.asks
		if o.side == itch.SideBuy {
			side = a.bids
		}
		// feed prices share one decimal scale, so String is a stable key
		key := o.price.String()
		if lv, ok := side[key]; ok {
			lv.Quantity += o.qty
		} else {
			side[key] = &Level{Price: o.price, Quantity: o.qty}
		}
	}

	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	snaps := make([]Snapshot, 0, len(symbols))
	for _, sym := range symbols {
		a := bySymbol[sym]
		snaps = append(snaps, Snapshot{
			Symbol:    sym,
			Timestamp: ts,
			Bids:      topLevels(a.bids, b.depth, true),
			Asks:      topLevels(a.asks, b.depth, false),
		})
	}
	return snaps
}

func topLevels(m map[string]*Level, depth int, desc bool) []Level {
	levels := make([]Level, 0, len(m))
	for _, lv := range m {
		levels = append(levels, *lv)
	}
	sort.Slice(levels, func(i, j int) bool {
		c := levels[i].Price.Cmp(levels[j].Price)
		if desc {
			return c > 0
		}
		return c < 0
	})
	if len(levels) > depth {
		levels = levels[:depth]
	}
	return levels
}
