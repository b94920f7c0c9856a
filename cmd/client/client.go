// Command client is a small CLI exercising the five HTTP endpoints exposed
// by cmd/server, in the same spirit as the teacher's TCP cmd/client: parse
// flags, build one request, print the response.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8000", "Base URL of the exchange server")
	action := flag.String("action", "register", "Action to perform: ['register', 'cancel', 'order', 'orderbook', 'best']")

	account := flag.String("account", "", "Account placing the order")
	base := flag.String("base", "WETH", "Base asset")
	quote := flag.String("quote", "USDC", "Quote asset")
	sideStr := flag.String("side", "bid", "Order side: 'bid' or 'ask'")
	price := flag.String("price", "0", "Limit price (decimal string)")
	qty := flag.String("qty", "0", "Quantity (decimal string)")
	orderID := flag.Uint64("orderId", 0, "Order id, for cancel/order actions")

	flag.Parse()

	var path string
	payload := map[string]any{}

	switch strings.ToLower(*action) {
	case "register":
		path = "/api/register_order"
		payload = map[string]any{
			"account":    *account,
			"price":      *price,
			"quantity":   *qty,
			"side":       *sideStr,
			"baseAsset":  *base,
			"quoteAsset": *quote,
		}
	case "cancel":
		path = "/api/cancel_order"
		payload = map[string]any{
			"orderId":    *orderID,
			"side":       *sideStr,
			"baseAsset":  *base,
			"quoteAsset": *quote,
		}
	case "order":
		path = "/api/order"
		payload = map[string]any{
			"orderId":    *orderID,
			"baseAsset":  *base,
			"quoteAsset": *quote,
		}
	case "orderbook":
		path = "/api/orderbook"
		payload = map[string]any{"symbol": fmt.Sprintf("%s_%s", *base, *quote)}
	case "best":
		path = "/api/get_best_order"
		payload = map[string]any{
			"side":       *sideStr,
			"baseAsset":  *base,
			"quoteAsset": *quote,
		}
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("failed to encode payload: %v", err)
	}

	resp, err := http.PostForm(*serverAddr+path, url.Values{"payload": {string(body)}})
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("failed to read response: %v", err)
	}

	fmt.Printf("-> %s %s\nstatus: %s\n%s\n", *action, path, resp.Status, respBody)
}
