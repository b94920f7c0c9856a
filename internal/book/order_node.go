// Package book implements the price-level FIFO queues and the dual-indexed
// per-side book that the matching engine sits on top of.
package book

import "matchbook/internal/money"

// Side identifies which side of a book an order rests on.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// OrderNode is one resting order. It is intrusive: Prev/Next link it into
// its owning PriceLevel's FIFO queue, and Level back-references that level so
// a node located through the id map can be unlinked in O(1) without a scan.
type OrderNode struct {
	OrderID    uint64
	Side       Side
	Price      money.Decimal
	Quantity   money.Decimal // remaining
	Timestamp  int64         // ms since epoch, assigned once at insertion
	TradeID    string
	Account    string
	BaseAsset  string
	QuoteAsset string

	Level      *PriceLevel
	Prev, Next *OrderNode
}
