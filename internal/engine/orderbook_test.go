package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/money"
)

func dec(t *testing.T, s string) money.Decimal {
	t.Helper()
	d, err := money.Parse(s)
	require.NoError(t, err)
	return d
}

func order(t *testing.T, side Side, price, qty string) OrderRequest {
	return OrderRequest{
		Account:    "acct",
		Price:      dec(t, price),
		Quantity:   dec(t, qty),
		Side:       side,
		BaseAsset:  "WETH",
		QuoteAsset: "USDC",
	}
}

func TestProcessOrder_RestsNotBest(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Bid, "100", "1"))
	require.NoError(t, err)

	res, err := ob.ProcessOrder(order(t, Bid, "99", "1"))
	require.NoError(t, err)
	assert.Equal(t, TaskRestedNotBest, res.TaskID)
	assert.Nil(t, res.Trades)

	best, ok := ob.GetBestBid()
	require.True(t, ok)
	assert.True(t, dec(t, "100").Equal(best))
}

func TestProcessOrder_RestsNewBest(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Bid, "100", "1"))
	require.NoError(t, err)

	res, err := ob.ProcessOrder(order(t, Bid, "101", "1"))
	require.NoError(t, err)
	assert.Equal(t, TaskRestedNewBest, res.TaskID)

	best, ok := ob.GetBestBid()
	require.True(t, ok)
	assert.True(t, dec(t, "101").Equal(best))
}

func TestProcessOrder_FirstOrderEverIsNewBest(t *testing.T) {
	ob := NewOrderBook()
	res, err := ob.ProcessOrder(order(t, Ask, "50", "1"))
	require.NoError(t, err)
	assert.Equal(t, TaskRestedNewBest, res.TaskID)
}

func TestProcessOrder_CrossedPartialConsume(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Ask, "100", "5"))
	require.NoError(t, err)

	res, err := ob.ProcessOrder(order(t, Bid, "100", "2"))
	require.NoError(t, err)
	assert.Equal(t, TaskCrossedPartial, res.TaskID)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.True(t, dec(t, "2").Equal(trade.Quantity))
	assert.True(t, dec(t, "100").Equal(trade.Price))
	require.NotNil(t, trade.Party1.OrderID, "maker still rests with residual quantity")
	require.NotNil(t, trade.Party1.Quantity)
	assert.True(t, dec(t, "3").Equal(*trade.Party1.Quantity))
	assert.Nil(t, trade.Party2.OrderID, "taker never rests on the crossing path")

	askPrice, ok := ob.GetBestAsk()
	require.True(t, ok)
	assert.True(t, dec(t, "100").Equal(askPrice))
}

func TestProcessOrder_CrossedExactConsumesLevelAndReportsNextBest(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Ask, "100", "5"))
	require.NoError(t, err)
	_, err = ob.ProcessOrder(order(t, Ask, "101", "3"))
	require.NoError(t, err)

	res, err := ob.ProcessOrder(order(t, Bid, "100", "5"))
	require.NoError(t, err)
	assert.Equal(t, TaskCrossedExact, res.TaskID)
	require.Len(t, res.Trades, 1)
	assert.Nil(t, res.Trades[0].Party1.OrderID, "fully consumed maker no longer rests")

	require.NotNil(t, res.NextBestOrder)
	assert.True(t, dec(t, "101").Equal(res.NextBestOrder.Price))

	_, ok := ob.GetBestAsk()
	require.True(t, ok)
	askPrice, _ := ob.GetBestAsk()
	assert.True(t, dec(t, "101").Equal(askPrice))
}

func TestProcessOrder_CrossedExactConsumesMultipleRestingOrdersFIFO(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Ask, "100", "2"))
	require.NoError(t, err)
	_, err = ob.ProcessOrder(order(t, Ask, "100", "3"))
	require.NoError(t, err)

	res, err := ob.ProcessOrder(order(t, Bid, "100", "5"))
	require.NoError(t, err)
	assert.Equal(t, TaskCrossedExact, res.TaskID)
	require.Len(t, res.Trades, 2, "one trade per resting order touched, in FIFO order")
	assert.True(t, dec(t, "2").Equal(res.Trades[0].Quantity))
	assert.True(t, dec(t, "3").Equal(res.Trades[1].Quantity))
}

func TestProcessOrder_OverConsumeRejectedWithNoStateChange(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Ask, "100", "2"))
	require.NoError(t, err)

	_, err = ob.ProcessOrder(order(t, Bid, "100", "5"))
	require.ErrorIs(t, err, ErrOverConsumesBestLevel)

	askPrice, ok := ob.GetBestAsk()
	require.True(t, ok, "rejected crossing order must not mutate the book")
	assert.True(t, dec(t, "100").Equal(askPrice))

	best, _ := ob.GetBestOrder(Ask)
	require.NotNil(t, best.OrderID)
	assert.True(t, dec(t, "2").Equal(best.Quantity))
}

func TestProcessOrder_OnlyBestLevelIsEverTouched(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Ask, "100", "1"))
	require.NoError(t, err)
	_, err = ob.ProcessOrder(order(t, Ask, "101", "10"))
	require.NoError(t, err)

	_, err = ob.ProcessOrder(order(t, Bid, "101", "5"))
	require.ErrorIs(t, err, ErrOverConsumesBestLevel, "crossing quantity may not be satisfied by sweeping a deeper level")
}

func TestProcessOrder_InvalidOrderRejected(t *testing.T) {
	ob := NewOrderBook()
	_, err := ob.ProcessOrder(order(t, Bid, "0", "1"))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = ob.ProcessOrder(order(t, Bid, "1", "0"))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestOrderBook_CancelOrder(t *testing.T) {
	ob := NewOrderBook()
	res, err := ob.ProcessOrder(order(t, Bid, "100", "1"))
	require.NoError(t, err)
	require.NotNil(t, res.OrderView.OrderID)

	view, err := ob.CancelOrder(Bid, *res.OrderView.OrderID)
	require.NoError(t, err)
	assert.True(t, dec(t, "100").Equal(view.Price))

	_, ok := ob.GetBestBid()
	assert.False(t, ok)

	_, err = ob.CancelOrder(Bid, *res.OrderView.OrderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderBook_SnapshotOrdering(t *testing.T) {
	ob := NewOrderBook()
	for _, p := range []string{"99", "101", "100"} {
		_, err := ob.ProcessOrder(order(t, Bid, p, "1"))
		require.NoError(t, err)
	}
	for _, p := range []string{"105", "103", "104"} {
		_, err := ob.ProcessOrder(order(t, Ask, p, "1"))
		require.NoError(t, err)
	}

	snap := ob.Snapshot("WETH_USDC")
	require.Len(t, snap.Bids, 3)
	require.Len(t, snap.Asks, 3)
	assert.True(t, dec(t, "101").Equal(snap.Bids[0].Price), "bids descend from best")
	assert.True(t, dec(t, "99").Equal(snap.Bids[2].Price))
	assert.True(t, dec(t, "103").Equal(snap.Asks[0].Price), "asks ascend from best")
	assert.True(t, dec(t, "105").Equal(snap.Asks[2].Price))
}

func TestOrderBook_NextOrderIDMonotonic(t *testing.T) {
	ob := NewOrderBook()
	res1, err := ob.ProcessOrder(order(t, Bid, "100", "1"))
	require.NoError(t, err)
	res2, err := ob.ProcessOrder(order(t, Bid, "99", "1"))
	require.NoError(t, err)

	require.NotNil(t, res1.OrderView.OrderID)
	require.NotNil(t, res2.OrderView.OrderID)
	assert.Less(t, *res1.OrderView.OrderID, *res2.OrderView.OrderID)
}
