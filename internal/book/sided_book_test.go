package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidedBook_BestPriceBidDescendingAskAscending(t *testing.T) {
	bids := NewSidedBook(Bid)
	asks := NewSidedBook(Ask)

	bids.Insert(&OrderNode{Side: Bid, Price: dec(t, "99"), Quantity: dec(t, "1")}, 1, 1)
	bids.Insert(&OrderNode{Side: Bid, Price: dec(t, "101"), Quantity: dec(t, "1")}, 2, 2)
	bids.Insert(&OrderNode{Side: Bid, Price: dec(t, "100"), Quantity: dec(t, "1")}, 3, 3)

	best, ok := bids.BestPrice()
	require.True(t, ok)
	assert.True(t, dec(t, "101").Equal(best))

	asks.Insert(&OrderNode{Side: Ask, Price: dec(t, "105"), Quantity: dec(t, "1")}, 1, 1)
	asks.Insert(&OrderNode{Side: Ask, Price: dec(t, "103"), Quantity: dec(t, "1")}, 2, 2)
	asks.Insert(&OrderNode{Side: Ask, Price: dec(t, "104"), Quantity: dec(t, "1")}, 3, 3)

	bestAsk, ok := asks.BestPrice()
	require.True(t, ok)
	assert.True(t, dec(t, "103").Equal(bestAsk))
}

func TestSidedBook_InsertAssignsMonotoneIDs(t *testing.T) {
	sb := NewSidedBook(Bid)
	var nextID uint64
	for i := 0; i < 3; i++ {
		node := &OrderNode{Side: Bid, Price: dec(t, "100"), Quantity: dec(t, "1")}
		sb.Insert(node, nextID, int64(i+1))
		nextID++
	}

	ids := make([]uint64, 0, 3)
	for n := sb.mustLevel(t).Head(); n != nil; n = n.Next {
		ids = append(ids, n.OrderID)
	}
	assert.Equal(t, []uint64{0, 1, 2}, ids, "assigned order_ids are strictly increasing")
}

// mustLevel is a test helper returning the single price level this test
// expects to exist.
func (sb *SidedBook) mustLevel(t *testing.T) *PriceLevel {
	t.Helper()
	lvl, ok := sb.BestLevel()
	require.True(t, ok)
	return lvl
}

func TestSidedBook_CancelRemovesOrderAndEmptyLevel(t *testing.T) {
	sb := NewSidedBook(Ask)
	node := &OrderNode{Side: Ask, Price: dec(t, "50"), Quantity: dec(t, "1")}
	sb.Insert(node, 1, 1)

	removed, ok := sb.Cancel(node.OrderID)
	require.True(t, ok)
	assert.Equal(t, node, removed)

	_, ok = sb.BestPrice()
	assert.False(t, ok, "no PriceLevel with zero volume should persist")

	_, ok = sb.GetOrder(node.OrderID)
	assert.False(t, ok, "id map must not retain a cancelled order")
}

func TestSidedBook_CancelUnknownIDIsNoop(t *testing.T) {
	sb := NewSidedBook(Bid)
	_, ok := sb.Cancel(9999)
	assert.False(t, ok)
}

func TestSidedBook_SecondBestLevel(t *testing.T) {
	sb := NewSidedBook(Bid)
	sb.Insert(&OrderNode{Side: Bid, Price: dec(t, "100"), Quantity: dec(t, "1")}, 1, 1)
	sb.Insert(&OrderNode{Side: Bid, Price: dec(t, "99"), Quantity: dec(t, "1")}, 2, 2)

	second, ok := sb.SecondBestLevel()
	require.True(t, ok)
	assert.True(t, dec(t, "99").Equal(second.Price))
}
