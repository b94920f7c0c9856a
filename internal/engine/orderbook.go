package engine

import (
	"time"

	"matchbook/internal/book"
	"matchbook/internal/money"
)

// OrderBook orchestrates a pair of SidedBooks for one trading pair. It is
// the matching engine: ProcessOrder, CancelOrder, GetBestBid/GetBestAsk, and
// Snapshot. Per spec.md §5 the engine is single-threaded per symbol — every
// method here reads or mutates shared state and must be serialized by the caller
// (see internal/actor for the serialization layer built on top of this).
type OrderBook struct {
	bids *book.SidedBook
	asks *book.SidedBook

	nextOrderID   uint64
	lastTimestamp int64
}

// NewOrderBook constructs an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: book.NewSidedBook(book.Bid),
		asks: book.NewSidedBook(book.Ask),
	}
}

// nowMs returns milliseconds since epoch, clamped to be non-decreasing
// within this OrderBook so that timestamp-derived ordering tags never
// regress, per spec.md's design note on wall-clock timestamps.
func (ob *OrderBook) nowMs() int64 {
	now := time.Now().UnixMilli()
	if now <= ob.lastTimestamp {
		now = ob.lastTimestamp + 1
	}
	ob.lastTimestamp = now
	return now
}

func (ob *OrderBook) sidedBook(side Side) *book.SidedBook {
	if side == Bid {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) opposite(side Side) *book.SidedBook {
	if side == Bid {
		return ob.asks
	}
	return ob.bids
}

// GetBestBid returns the best (highest) resting bid price, if any.
func (ob *OrderBook) GetBestBid() (money.Decimal, bool) {
	return ob.bids.BestPrice()
}

// GetBestAsk returns the best (lowest) resting ask price, if any.
func (ob *OrderBook) GetBestAsk() (money.Decimal, bool) {
	return ob.asks.BestPrice()
}

// GetBestOrder returns the head order resting at the best price on side, if any.
func (ob *OrderBook) GetBestOrder(side Side) (OrderView, bool) {
	lvl, ok := ob.sidedBook(side).BestLevel()
	if !ok {
		return OrderView{}, false
	}
	head := lvl.Head()
	if head == nil {
		return OrderView{}, false
	}
	return viewOf(head), true
}

// GetOrder searches both sides for orderID.
func (ob *OrderBook) GetOrder(orderID uint64) (OrderView, bool) {
	if node, ok := ob.bids.GetOrder(orderID); ok {
		return viewOf(node), true
	}
	if node, ok := ob.asks.GetOrder(orderID); ok {
		return viewOf(node), true
	}
	return OrderView{}, false
}

// CancelOrder locates the node on the specified side's id map, unlinks it
// (removing its price level if now empty), and returns its pre-removal
// attributes. Returns ErrOrderNotFound if the id is absent on that side.
func (ob *OrderBook) CancelOrder(side Side, orderID uint64) (OrderView, error) {
	node, ok := ob.sidedBook(side).Cancel(orderID)
	if !ok {
		return OrderView{}, ErrOrderNotFound
	}
	return viewOf(node), nil
}

// Snapshot returns a read-only aggregated view of both sides: bids
// descending by price, asks ascending by price. It does not mutate state.
func (ob *OrderBook) Snapshot(symbol string) Snapshot {
	snap := Snapshot{Symbol: symbol}
	for _, lvl := range ob.bids.Levels() {
		snap.Bids = append(snap.Bids, LevelView{Price: lvl.Price, Amount: lvl.Volume, Total: lvl.Price.Mul(lvl.Volume)})
	}
	for _, lvl := range ob.asks.Levels() {
		snap.Asks = append(snap.Asks, LevelView{Price: lvl.Price, Amount: lvl.Volume, Total: lvl.Price.Mul(lvl.Volume)})
	}
	return snap
}

// crosses reports whether an incoming order on side at price would cross
// the opposite side's best price.
func (ob *OrderBook) crosses(side Side, price money.Decimal) bool {
	if side == Bid {
		askPrice, ok := ob.asks.BestPrice()
		return ok && price.GreaterThanOrEqual(askPrice)
	}
	bidPrice, ok := ob.bids.BestPrice()
	return ok && price.LessThanOrEqual(bidPrice)
}

// improvesBest reports whether price is strictly better than the current
// best on side (or the side was empty), before the order is inserted.
func (ob *OrderBook) improvesBest(side Side, price money.Decimal) bool {
	current, ok := ob.sidedBook(side).BestPrice()
	if !ok {
		return true
	}
	if side == Bid {
		return price.GreaterThan(current)
	}
	return price.LessThan(current)
}

// ProcessOrder implements the match algorithm of spec.md §4.3: determine
// crossing against the opposite side's best price level only; if the
// incoming quantity exceeds that level's volume, reject the whole order
// without any state change; otherwise consume FIFO from the head of that
// level until filled, emitting one trade per resting order touched (the last
// of which is a partial fill if that resting order is not fully consumed).
// Deeper levels are never swept — this is a deliberate simplification versus
// classical sweeping exchanges (see spec.md §4.3 "Matching policy").
func (ob *OrderBook) ProcessOrder(req OrderRequest) (*MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !ob.crosses(req.Side, req.Price) {
		taskID := TaskRestedNotBest
		if ob.improvesBest(req.Side, req.Price) {
			taskID = TaskRestedNewBest
		}
		node := &book.OrderNode{
			Side:       req.Side,
			Price:      req.Price,
			Quantity:   req.Quantity,
			TradeID:    req.TradeID,
			Account:    req.Account,
			BaseAsset:  req.BaseAsset,
			QuoteAsset: req.QuoteAsset,
		}
		ob.sidedBook(req.Side).Insert(node, ob.nextOrderID, ob.nowMs())
		ob.nextOrderID++
		return &MatchResult{
			Trades:    nil,
			OrderView: viewOf(node),
			TaskID:    taskID,
		}, nil
	}

	opp := ob.opposite(req.Side)
	lvl, ok := opp.BestLevel()
	if !ok {
		// crosses() already established the opposite side is non-empty.
		return nil, ErrInternalInvariant
	}
	if req.Quantity.GreaterThan(lvl.Volume) {
		return nil, ErrOverConsumesBestLevel
	}

	remaining := req.Quantity
	var trades []Trade
	for remaining.IsPositive() {
		head := lvl.Head()
		if head == nil {
			return nil, ErrInternalInvariant
		}

		ts := ob.nowMs()
		if remaining.GreaterThanOrEqual(head.Quantity) {
			filled := head.Quantity
			remaining = remaining.Sub(filled)
			opp.ConsumeHead(lvl)
			trades = append(trades, Trade{
				Timestamp: ts,
				Time:      ts,
				Price:     lvl.Price,
				Quantity:  filled,
				Party1: Party{
					Account: head.Account,
					Side:    head.Side,
					OrderID: nil, // the maker no longer rests
				},
				Party2: remainingParty(req, remaining),
			})
		} else {
			filled := remaining
			lvl.UpdateHeadQuantity(filled)
			newBookQty := head.Quantity
			headOrderID := head.OrderID
			remaining = money.Zero
			trades = append(trades, Trade{
				Timestamp: ts,
				Time:      ts,
				Price:     lvl.Price,
				Quantity:  filled,
				Party1: Party{
					Account:  head.Account,
					Side:     head.Side,
					OrderID:  &headOrderID,
					Quantity: &newBookQty,
				},
				Party2: remainingParty(req, remaining),
			})
		}
	}

	incomingView := OrderView{
		OrderID:    nil,
		Account:    req.Account,
		Price:      req.Price,
		Quantity:   money.Zero,
		Side:       req.Side,
		BaseAsset:  req.BaseAsset,
		QuoteAsset: req.QuoteAsset,
		TradeID:    req.TradeID,
	}

	if lvl.Empty() {
		opp.RemoveLevelIfEmpty(lvl)
		result := &MatchResult{Trades: trades, OrderView: incomingView, TaskID: TaskCrossedExact}
		if nextView, ok := ob.GetBestOrder(opp.Side()); ok {
			result.NextBestOrder = &nextView
		}
		return result, nil
	}

	return &MatchResult{Trades: trades, OrderView: incomingView, TaskID: TaskCrossedPartial}, nil
}

// remainingParty builds the taker side of a trade: the incoming order never
// rests on the crossing path, so OrderID is always nil; Quantity reports
// the remaining incoming quantity after this step, or nil once it reaches
// zero.
func remainingParty(req OrderRequest, remaining money.Decimal) Party {
	p := Party{Account: req.Account, Side: req.Side, OrderID: nil}
	if !remaining.IsZero() {
		r := remaining
		p.Quantity = &r
	}
	return p
}
