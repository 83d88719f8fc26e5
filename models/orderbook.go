package models

import (
	"encoding/json"
	"fmt"
)

// DepthLevel represents a single price level of an order book ladder.
type DepthLevel struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// UnmarshalJSON requires both price and quantity to be present.
func (l *DepthLevel) UnmarshalJSON(data []byte) error {
	var raw struct {
		Price    *float64 `json:"price"`
		Quantity *int64   `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Price == nil {
		return fmt.Errorf("depth level: missing price")
	}
	if raw.Quantity == nil {
		return fmt.Errorf("depth level: missing quantity")
	}
	l.Price = *raw.Price
	l.Quantity = *raw.Quantity
	return nil
}

// DepthData is the payload of a mode 3 (market depth) update. Bids and asks are
// kept in wire order, best price first as sent by the server.
type DepthData struct {
	Exchange  *string      `json:"exchange,omitempty"`
	Symbol    *string      `json:"symbol,omitempty"`
	Ltp       *float64     `json:"ltp,omitempty"`
	Open      *float64     `json:"open,omitempty"`
	High      *float64     `json:"high,omitempty"`
	Low       *float64     `json:"low,omitempty"`
	Close     *float64     `json:"close,omitempty"`
	Volume    *int64       `json:"volume,omitempty"`
	Bids      []DepthLevel `json:"bids,omitempty"`
	Asks      []DepthLevel `json:"asks,omitempty"`
	Timestamp *int64       `json:"timestamp,omitempty"`
}

// BestBid returns the first bid level, if any.
func (d *DepthData) BestBid() (DepthLevel, bool) {
	if d == nil || len(d.Bids) == 0 {
		return DepthLevel{}, false
	}
	return d.Bids[0], true
}

// BestAsk returns the first ask level, if any.
func (d *DepthData) BestAsk() (DepthLevel, bool) {
	if d == nil || len(d.Asks) == 0 {
		return DepthLevel{}, false
	}
	return d.Asks[0], true
}
