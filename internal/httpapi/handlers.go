package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"matchbook/internal/actor"
	"matchbook/internal/engine"
)

// envelope is the {message, status_code, ...} response shape spec.md §6
// requires: status_code=1 on logical success, status_code=0 on a recognized
// failure kind from spec.md §7 (HTTP 400), and an unexpected error yields
// HTTP 500 with status_code=0 and the error text as the message.
func ok(c *gin.Context, message string, extra map[string]any) {
	body := gin.H{"message": message, "status_code": 1}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func logicalFailure(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message, "status_code": 0})
}

func internalFailure(c *gin.Context, err error) {
	requestID, _ := c.Get("requestID")
	log.Error().Str("requestID", toString(requestID)).Err(err).Msg("unexpected error handling request")
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "status_code": 0})
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// decodePayload reads the "payload" form field and decodes it as JSON into dst.
func decodePayload(c *gin.Context, dst any) bool {
	raw := c.PostForm("payload")
	if raw == "" {
		logicalFailure(c, "missing payload field")
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logicalFailure(c, "malformed payload: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleRegisterOrder(c *gin.Context) {
	var payload registerOrderPayload
	if !decodePayload(c, &payload) {
		return
	}

	side, okSide := sideFromWire(payload.Side)
	if !okSide {
		logicalFailure(c, "unrecognized side")
		return
	}

	tradeID := payload.Account // pass-through default, per original_source/main.py

	req := engine.OrderRequest{
		Account:    payload.Account,
		Price:      payload.Price,
		Quantity:   payload.Quantity,
		Side:       side,
		BaseAsset:  payload.BaseAsset,
		QuoteAsset: payload.QuoteAsset,
		TradeID:    tradeID,
	}

	result, err := s.registry.RegisterOrder(payload.BaseAsset, payload.QuoteAsset, req)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidOrder), errors.Is(err, engine.ErrOverConsumesBestLevel):
			logicalFailure(c, err.Error())
		default:
			internalFailure(c, err)
		}
		return
	}

	ok(c, "Order registered successfully", gin.H{"order": orderViewToWire(result.OrderView, result.Trades)})
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	var payload cancelOrderPayload
	if !decodePayload(c, &payload) {
		return
	}

	side, okSide := sideFromWire(payload.Side)
	if !okSide {
		logicalFailure(c, "unrecognized side")
		return
	}

	view, err := s.registry.CancelOrder(payload.BaseAsset, payload.QuoteAsset, side, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrOrderNotFound), errors.Is(err, actor.ErrSymbolNotFound):
			logicalFailure(c, "order not found")
		default:
			internalFailure(c, err)
		}
		return
	}

	ok(c, "Order cancelled successfully", gin.H{"order": orderViewToWire(view, nil)})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	var payload getOrderPayload
	if !decodePayload(c, &payload) {
		return
	}

	view, found, err := s.registry.GetOrder(payload.BaseAsset, payload.QuoteAsset, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, actor.ErrSymbolNotFound):
			logicalFailure(c, "order not found")
		default:
			internalFailure(c, err)
		}
		return
	}
	if !found {
		logicalFailure(c, "order not found")
		return
	}

	ok(c, "Order retrieved successfully", gin.H{"order": orderViewToWire(view, nil)})
}

func (s *Server) handleOrderbook(c *gin.Context) {
	var payload orderbookPayload
	if !decodePayload(c, &payload) {
		return
	}

	snap, err := s.registry.Snapshot(payload.Symbol)
	if err != nil {
		if errors.Is(err, actor.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "order book not found", "status_code": 0})
			return
		}
		internalFailure(c, err)
		return
	}

	ok(c, "Order book retrieved successfully", snapshotToWire(snap))
}

func (s *Server) handleGetBestOrder(c *gin.Context) {
	var payload getBestOrderPayload
	if !decodePayload(c, &payload) {
		return
	}

	side, okSide := sideFromWire(payload.Side)
	if !okSide {
		logicalFailure(c, "unrecognized side")
		return
	}

	view, found, err := s.registry.GetBestOrder(payload.BaseAsset, payload.QuoteAsset, side)
	if err != nil {
		internalFailure(c, err)
		return
	}
	if !found {
		// No resting order on this side: report a zero-quantity placeholder,
		// matching original_source/Orderbook_Service/main.py's get_best_order
		// fallback rather than a 404.
		ok(c, "no bid or ask order", gin.H{"order": map[string]any{
			"order_id":   nil,
			"account":    "",
			"price":      0.0,
			"quantity":   0.0,
			"side":       payload.Side,
			"baseAsset":  payload.BaseAsset,
			"quoteAsset": payload.QuoteAsset,
			"trade_id":   nil,
			"trades":     []any{},
			"isValid":    false,
			"timestamp":  0,
		}})
		return
	}

	ok(c, "Best order retrieved successfully", gin.H{"order": orderViewToWire(view, nil)})
}
