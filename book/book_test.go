package book

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielum/itchfeed/itch"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func add(b *Book, id uint64, symbol string, side itch.SideIndicator, qty uint32, p string) {
	b.Apply(itch.AddOrder{OrderID: id, Symbol: symbol, Side: side, Quantity: qty, Price: price(p)})
}

func TestBookAddAndAggregate(t *testing.T) {
	b := New(5)
	add(b, 1, "BDO", itch.SideBuy, 100, "123.40")
	add(b, 2, "BDO", itch.SideBuy, 50, "123.40")
	add(b, 3, "BDO", itch.SideBuy, 200, "123.00")
	add(b, 4, "BDO", itch.SideSell, 80, "124.10")

	snaps := b.Snapshots(time.Time{})
	require.Len(t, snaps, 1)
	snap := snaps[0]
	assert.Equal(t, "BDO", snap.Symbol)

	require.Len(t, snap.Bids, 2)
	assert.True(t, snap.Bids[0].Price.Equal(price("123.40")))
	assert.EqualValues(t, 150, snap.Bids[0].Quantity)
	assert.True(t, snap.Bids[1].Price.Equal(price("123.00")))
	assert.EqualValues(t, 200, snap.Bids[1].Quantity)

	require.Len(t, snap.Asks, 1)
	assert.True(t, snap.Asks[0].Price.Equal(price("124.10")))
	assert.EqualValues(t, 80, snap.Asks[0].Quantity)
}

func TestBookExecuteToZeroRemoves(t *testing.T) {
	b := New(5)
	add(b, 1, "TEL", itch.SideBuy, 100, "1985.50")

	b.Apply(itch.OrderExecuted{OrderID: 1, Quantity: 40})
	assert.Equal(t, 1, b.Live())

	snaps := b.Snapshots(time.Time{})
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Bids, 1)
	assert.EqualValues(t, 60, snaps[0].Bids[0].Quantity)

	b.Apply(itch.OrderExecuted{OrderID: 1, Quantity: 60})
	assert.Equal(t, 0, b.Live())
	assert.Empty(t, b.Snapshots(time.Time{}))
}

func TestBookDeleteOrder(t *testing.T) {
	b := New(5)
	add(b, 1, "ALI", itch.SideSell, 100, "33.05")
	b.Apply(itch.DeleteOrder{OrderID: 1})
	assert.Equal(t, 0, b.Live())

	// deleting an unknown id is a no-op
	b.Apply(itch.DeleteOrder{OrderID: 99})
	assert.Equal(t, 0, b.Live())
}

func TestBookReplaceCarriesForward(t *testing.T) {
	b := New(5)
	add(b, 1, "ALI", itch.SideSell, 100, "33.05")

	b.Apply(itch.ReplaceOrder{OldOrderID: 1, OrderID: 2, Quantity: 75})
	assert.Equal(t, 1, b.Live())

	snaps := b.Snapshots(time.Time{})
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Asks, 1)
	assert.True(t, snaps[0].Asks[0].Price.Equal(price("33.05")))
	assert.EqualValues(t, 75, snaps[0].Asks[0].Quantity)

	// the old id is gone
	b.Apply(itch.OrderExecuted{OrderID: 1, Quantity: 75})
	assert.Equal(t, 1, b.Live())
}

func TestBookReplaceUnknownOrder(t *testing.T) {
	b := New(5)
	b.Apply(itch.ReplaceOrder{OldOrderID: 1, OrderID: 2, Quantity: 75})
	assert.Equal(t, 0, b.Live())
}

func TestBookDepthLimit(t *testing.T) {
	b := New(2)
	add(b, 1, "BDO", itch.SideBuy, 10, "100")
	add(b, 2, "BDO", itch.SideBuy, 10, "101")
	add(b, 3, "BDO", itch.SideBuy, 10, "102")
	add(b, 4, "BDO", itch.SideBuy, 10, "103")

	snaps := b.Snapshots(time.Time{})
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Bids, 2)
	assert.True(t, snaps[0].Bids[0].Price.Equal(price("103")))
	assert.True(t, snaps[0].Bids[1].Price.Equal(price("102")))
}

func TestBookSystemEventSnapshots(t *testing.T) {
	b := New(5)
	add(b, 1, "BDO", itch.SideBuy, 10, "100")
	add(b, 2, "ALI", itch.SideSell, 20, "33")

	tick := time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)
	snaps := b.Apply(itch.SystemEvent{Counter: 34200, Timestamp: tick})
	require.Len(t, snaps, 2)

	// symbols in lexical order, timestamp taken from the tick
	assert.Equal(t, "ALI", snaps[0].Symbol)
	assert.Equal(t, "BDO", snaps[1].Symbol)
	assert.True(t, snaps[0].Timestamp.Equal(tick))

	// non-tick records return nil
	assert.Nil(t, b.Apply(itch.Trade{Symbol: "BDO", Quantity: 1}))
	assert.Nil(t, b.Apply(&itch.Unparsed{}))
}
