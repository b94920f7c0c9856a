// Package engine implements the core limit-order-book matching engine: a
// dual-sided price-time-priority book, its dual-indexed data structure, the
// matching loop with partial-fill and rest-residual semantics, and the
// classification of each submission into one of four outcome categories
// plus a failure case.
package engine

import (
	"errors"

	"matchbook/internal/book"
	"matchbook/internal/money"
)

// Side re-exports book.Side so callers of this package never need to import
// internal/book directly.
type Side = book.Side

const (
	Bid = book.Bid
	Ask = book.Ask
)

// TaskID is the enumerated classification of a successful ProcessOrder
// outcome. These four values are part of the public contract, not an
// internal implementation detail.
type TaskID int

const (
	// TaskRestedNotBest: order did not cross and is not the new best on its side.
	TaskRestedNotBest TaskID = 1
	// TaskRestedNewBest: order did not cross but is the new best on its side.
	TaskRestedNewBest TaskID = 2
	// TaskCrossedPartial: order crossed and partially consumed the best opposing level.
	TaskCrossedPartial TaskID = 3
	// TaskCrossedExact: order crossed and exactly consumed the best opposing level.
	TaskCrossedExact TaskID = 4
)

// Error kinds surfaced by the core. The first three are expected and
// recoverable at the caller; ErrInternalInvariant indicates a design defect
// and aborts the operation without partial mutation.
var (
	ErrOverConsumesBestLevel = errors.New("order would over-consume the best opposing price level")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidOrder          = errors.New("invalid order")
	ErrInternalInvariant     = errors.New("internal invariant violated")
)

// OrderRequest is the caller-submitted limit order. TradeID is a pass-through
// attribute with no enforced meaning to the engine, distinct from the
// engine-assigned OrderID; when empty, callers conventionally default it to
// Account (see the service layer).
type OrderRequest struct {
	Account    string
	Price      money.Decimal
	Quantity   money.Decimal
	Side       Side
	BaseAsset  string
	QuoteAsset string
	TradeID    string
}

// Validate checks the invariants spec.md §3 requires before any mutation:
// strictly positive price and quantity, and a recognized side.
func (r OrderRequest) Validate() error {
	if !r.Price.IsPositive() {
		return ErrInvalidOrder
	}
	if !r.Quantity.IsPositive() {
		return ErrInvalidOrder
	}
	if r.Side != Bid && r.Side != Ask {
		return ErrInvalidOrder
	}
	return nil
}

// OrderView is a read-only snapshot of an order's attributes, used both for
// the order resting/consumed after ProcessOrder and for CancelOrder's
// pre-removal view and GetOrder's lookup result.
type OrderView struct {
	OrderID    *uint64
	Account    string
	Price      money.Decimal
	Quantity   money.Decimal
	Side       Side
	BaseAsset  string
	QuoteAsset string
	TradeID    string
	Timestamp  int64
}

func viewOf(node *book.OrderNode) OrderView {
	id := node.OrderID
	return OrderView{
		OrderID:    &id,
		Account:    node.Account,
		Price:      node.Price,
		Quantity:   node.Quantity,
		Side:       node.Side,
		BaseAsset:  node.BaseAsset,
		QuoteAsset: node.QuoteAsset,
		TradeID:    node.TradeID,
		Timestamp:  node.Timestamp,
	}
}

// Party is one side of an emitted Trade: the resting (maker) party or the
// incoming (taker) party.
type Party struct {
	Account  string
	Side     Side
	OrderID  *uint64        // nil when the order does not rest (fully consumed, or incoming on the crossing path)
	Quantity *money.Decimal // maker's new_book_quantity, or taker's remaining quantity; nil when not applicable
}

// Trade is one match between a resting (maker) order and an incoming
// (taker) order. Price is always the resting side's price.
type Trade struct {
	Timestamp int64
	Time      int64
	Price     money.Decimal
	Quantity  money.Decimal
	Party1    Party // resting / maker
	Party2    Party // incoming / taker
}

// MatchResult is the outcome of a successful ProcessOrder call.
type MatchResult struct {
	Trades        []Trade
	OrderView     OrderView
	TaskID        TaskID
	NextBestOrder *OrderView
}

// LevelView is one aggregated row of a Snapshot.
type LevelView struct {
	Price  money.Decimal
	Amount money.Decimal
	Total  money.Decimal
}

// Snapshot is the read-only view returned by OrderBook.Snapshot: bids in
// descending price order, asks in ascending price order.
type Snapshot struct {
	Symbol string
	Bids   []LevelView
	Asks   []LevelView
}
