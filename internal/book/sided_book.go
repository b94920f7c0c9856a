package book

import (
	"github.com/tidwall/btree"

	"matchbook/internal/money"
)

// levels is the price-ordered index for one side of a book. It is a
// btree.BTreeG keyed by PriceLevel.Price, the same generic tree the teacher
// reaches for, with a Less function tuned so that the *best* price for this
// side is always the tree's minimum: descending comparison for bids (the
// highest bid is "smallest"), ascending comparison for asks (the lowest ask
// is "smallest"). That lets every best-price query become Min()/MinMut().
type levels = btree.BTreeG[*PriceLevel]

// SidedBook owns one side (bids or asks) of an OrderBook: a price-ordered
// index of PriceLevels plus a direct order-id to OrderNode map for O(1)
// cancel-by-id lookup. Both indexes are updated atomically within every
// operation; no PriceLevel with zero volume is ever left reachable through
// the price index.
type SidedBook struct {
	side   Side
	index  *levels
	orders map[uint64]*OrderNode
}

// NewSidedBook constructs an empty SidedBook for the given side.
func NewSidedBook(side Side) *SidedBook {
	var less func(a, b *PriceLevel) bool
	if side == Bid {
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &SidedBook{
		side:   side,
		index:  btree.NewBTreeG(less),
		orders: make(map[uint64]*OrderNode),
	}
}

// Side reports which side this book holds.
func (sb *SidedBook) Side() Side { return sb.side }

// Len reports the number of distinct price levels currently resting.
func (sb *SidedBook) Len() int { return sb.index.Len() }

// BestLevel returns the best (highest bid / lowest ask) PriceLevel, or
// (nil, false) if the side is empty.
func (sb *SidedBook) BestLevel() (*PriceLevel, bool) {
	return sb.index.Min()
}

// BestPrice returns the best price on this side, or (zero, false) if empty.
func (sb *SidedBook) BestPrice() (money.Decimal, bool) {
	lvl, ok := sb.index.Min()
	if !ok {
		return money.Zero, false
	}
	return lvl.Price, true
}

// SecondBestLevel returns the level immediately after the current best one,
// i.e. the level that becomes best once the current best is cleared.
func (sb *SidedBook) SecondBestLevel() (*PriceLevel, bool) {
	best, ok := sb.index.Min()
	if !ok {
		return nil, false
	}
	var second *PriceLevel
	count := 0
	sb.index.Ascend(best, func(item *PriceLevel) bool {
		count++
		if count == 2 {
			second = item
			return false
		}
		return true
	})
	if second == nil {
		return nil, false
	}
	return second, true
}

// levelAt returns the PriceLevel at price, creating it if absent.
func (sb *SidedBook) levelAt(price money.Decimal) *PriceLevel {
	probe := &PriceLevel{Price: price}
	if lvl, ok := sb.index.Get(probe); ok {
		return lvl
	}
	lvl := NewPriceLevel(price)
	sb.index.Set(lvl)
	return lvl
}

// Insert assigns the node an id and an insertion timestamp, appends it to
// its price level (creating the level if this is the first order at that
// price), and records it in the id map.
func (sb *SidedBook) Insert(node *OrderNode, orderID uint64, timestampMs int64) {
	node.OrderID = orderID
	node.Timestamp = timestampMs
	lvl := sb.levelAt(node.Price)
	lvl.Append(node)
	sb.orders[node.OrderID] = node
}

// GetOrder looks up a resting node by id in O(1).
func (sb *SidedBook) GetOrder(orderID uint64) (*OrderNode, bool) {
	node, ok := sb.orders[orderID]
	return node, ok
}

// Cancel removes the order with the given id: it is unlinked from its
// price level, removed from the id map, and the level itself is removed
// from the price index if it is now empty. Reports false if the id is
// absent — the caller decides how that surfaces (spec.md treats it as the
// order_not_found error kind at the API layer).
func (sb *SidedBook) Cancel(orderID uint64) (*OrderNode, bool) {
	node, ok := sb.orders[orderID]
	if !ok {
		return nil, false
	}
	lvl := node.Level
	lvl.Unlink(node)
	delete(sb.orders, orderID)
	if lvl.Empty() {
		sb.index.Delete(lvl)
	}
	return node, true
}

// RemoveLevelIfEmpty drops lvl from the price index if it has no resting
// orders. Used by the matching loop after consuming the best level's head.
func (sb *SidedBook) RemoveLevelIfEmpty(lvl *PriceLevel) {
	if lvl.Empty() {
		sb.index.Delete(lvl)
	}
}

// ConsumeHead fully removes the head node of lvl: unlinked from the level's
// FIFO queue and dropped from the id map. The caller removes lvl from the
// price index afterward if it is now empty (RemoveLevelIfEmpty).
func (sb *SidedBook) ConsumeHead(lvl *PriceLevel) *OrderNode {
	head := lvl.Head()
	lvl.Unlink(head)
	sb.deleteOrder(head.OrderID)
	return head
}

// deleteOrder removes an order from the id map without touching its level;
// used internally by the matching loop, which already holds the level and
// performs the unlink itself.
func (sb *SidedBook) deleteOrder(orderID uint64) {
	delete(sb.orders, orderID)
}

// Levels returns every price level on this side, ordered best-first.
func (sb *SidedBook) Levels() []*PriceLevel {
	out := make([]*PriceLevel, 0, sb.index.Len())
	sb.index.Scan(func(item *PriceLevel) bool {
		out = append(out, item)
		return true
	})
	return out
}
