package httpapi

import (
	"matchbook/internal/engine"
	"matchbook/internal/money"
)

// sideFromWire parses the "bid"/"ask" strings spec.md §6 specifies.
func sideFromWire(s string) (engine.Side, bool) {
	switch s {
	case "bid":
		return engine.Bid, true
	case "ask":
		return engine.Ask, true
	default:
		return 0, false
	}
}

func sideToWire(s engine.Side) string {
	if s == engine.Bid {
		return "bid"
	}
	return "ask"
}

// registerOrderPayload is the recognized payload for POST /api/register_order.
type registerOrderPayload struct {
	Account    string        `json:"account"`
	Price      money.Decimal `json:"price"`
	Quantity   money.Decimal `json:"quantity"`
	Side       string        `json:"side"`
	BaseAsset  string        `json:"baseAsset"`
	QuoteAsset string        `json:"quoteAsset"`
}

// cancelOrderPayload is the recognized payload for POST /api/cancel_order.
type cancelOrderPayload struct {
	OrderID    uint64 `json:"orderId"`
	Side       string `json:"side"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// getOrderPayload is the recognized payload for POST /api/order.
type getOrderPayload struct {
	OrderID    uint64 `json:"orderId"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// orderbookPayload is the recognized payload for POST /api/orderbook.
type orderbookPayload struct {
	Symbol string `json:"symbol"`
}

// getBestOrderPayload is the recognized payload for POST /api/get_best_order.
type getBestOrderPayload struct {
	Side       string `json:"side"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

func tradeToWire(t engine.Trade) map[string]any {
	return map[string]any{
		"timestamp": t.Timestamp,
		"time":      t.Time,
		"price":     t.Price.Float64(),
		"quantity":  t.Quantity.Float64(),
		"party1":    partyToWire(t.Party1),
		"party2":    partyToWire(t.Party2),
	}
}

// partyToWire renders a Party as the four-element [account, side, order_id,
// quantity] array spec.md §3 defines for each side of a trade.
func partyToWire(p engine.Party) []any {
	var orderID any
	if p.OrderID != nil {
		orderID = *p.OrderID
	}
	var qty any
	if p.Quantity != nil {
		qty = p.Quantity.Float64()
	}
	return []any{p.Account, sideToWire(p.Side), orderID, qty}
}

// orderViewToWire renders an OrderView plus its trades into the order_dict
// shape the original service returned: order_id, account, price, quantity,
// side, baseAsset, quoteAsset, trade_id, trades, isValid, timestamp.
func orderViewToWire(v engine.OrderView, trades []engine.Trade) map[string]any {
	tradesWire := make([]map[string]any, 0, len(trades))
	for _, t := range trades {
		tradesWire = append(tradesWire, tradeToWire(t))
	}
	return map[string]any{
		"order_id":   v.OrderID,
		"account":    v.Account,
		"price":      v.Price.Float64(),
		"quantity":   v.Quantity.Float64(),
		"side":       sideToWire(v.Side),
		"baseAsset":  v.BaseAsset,
		"quoteAsset": v.QuoteAsset,
		"trade_id":   v.TradeID,
		"trades":     tradesWire,
		"isValid":    v.OrderID != nil,
		"timestamp":  v.Timestamp,
	}
}

func snapshotLevelToWire(l engine.LevelView) map[string]any {
	return map[string]any{
		"price":  l.Price.Float64(),
		"amount": l.Amount.Float64(),
		"total":  l.Total.Float64(),
	}
}

func snapshotToWire(s engine.Snapshot) map[string]any {
	bids := make([]map[string]any, 0, len(s.Bids))
	for _, l := range s.Bids {
		bids = append(bids, snapshotLevelToWire(l))
	}
	asks := make([]map[string]any, 0, len(s.Asks))
	for _, l := range s.Asks {
		asks = append(asks, snapshotLevelToWire(l))
	}
	return map[string]any{"bids": bids, "asks": asks}
}
