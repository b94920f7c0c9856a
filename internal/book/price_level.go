package book

import "matchbook/internal/money"

// PriceLevel is the FIFO queue of all resting orders sharing one price on
// one side of a book. It owns an intrusive doubly-linked list of OrderNodes
// so that appending to the tail, reading the head, and unlinking a node
// already located via the id map are all O(1): no scan is ever required.
type PriceLevel struct {
	Price  money.Decimal
	Volume money.Decimal
	Count  int

	head, tail *OrderNode
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price money.Decimal) *PriceLevel {
	return &PriceLevel{Price: price, Volume: money.Zero}
}

// Append links node at the tail of the level's queue.
func (pl *PriceLevel) Append(node *OrderNode) {
	node.Level = pl
	node.Prev = pl.tail
	node.Next = nil
	if pl.tail != nil {
		pl.tail.Next = node
	} else {
		pl.head = node
	}
	pl.tail = node
	pl.Volume = pl.Volume.Add(node.Quantity)
	pl.Count++
}

// Unlink splices node out of the level's queue. The caller must ensure node
// belongs to this level. If Count reaches zero the level is now empty and
// the caller is responsible for removing it from the owning SidedBook index.
func (pl *PriceLevel) Unlink(node *OrderNode) {
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		pl.head = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		pl.tail = node.Prev
	}
	node.Prev, node.Next, node.Level = nil, nil, nil
	pl.Volume = pl.Volume.Sub(node.Quantity)
	pl.Count--
}

// Head returns the first (oldest) node, or nil if the level is empty.
func (pl *PriceLevel) Head() *OrderNode {
	return pl.head
}

// Empty reports whether the level has no resting orders.
func (pl *PriceLevel) Empty() bool {
	return pl.Count == 0
}

// Orders returns the level's resting orders in FIFO order. Used by tests;
// snapshotting reads Volume and the matching loop re-reads Head() each step.
func (pl *PriceLevel) Orders() []*OrderNode {
	orders := make([]*OrderNode, 0, pl.Count)
	for n := pl.head; n != nil; n = n.Next {
		orders = append(orders, n)
	}
	return orders
}

// UpdateHeadQuantity decrements the head node's remaining quantity (and the
// level's aggregate volume) by delta. The caller ensures delta does not
// exceed the head's quantity. If the head is fully consumed it is unlinked.
func (pl *PriceLevel) UpdateHeadQuantity(delta money.Decimal) {
	head := pl.head
	if head == nil {
		return
	}
	head.Quantity = head.Quantity.Sub(delta)
	pl.Volume = pl.Volume.Sub(delta)
	if head.Quantity.IsZero() {
		pl.Unlink(head)
	}
}
