package models

import (
	"encoding/json"
	"fmt"
)

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// GENERAL ///////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// APIKeyRequest is the body of endpoints that take nothing but the key.
type APIKeyRequest struct {
	APIKey string `json:"apikey"`
}

// StatusResponse is the minimal envelope every endpoint returns.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the server marked the call successful.
func (r StatusResponse) OK() bool {
	return r.Status == "success"
}

// Err converts a non-success status into an error.
func (r StatusResponse) Err() error {
	if r.OK() {
		return nil
	}
	if r.Message == "" {
		return fmt.Errorf("openalgo: status %q", r.Status)
	}
	return fmt.Errorf("openalgo: %s", r.Message)
}

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// ORDERS ////////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// OrderResponse is returned by order placement and modification endpoints.
type OrderResponse struct {
	StatusResponse
	OrderID string `json:"orderid,omitempty"`
}

type PlaceOrderRequest struct {
	APIKey            string `json:"apikey"`
	Strategy          string `json:"strategy"`
	Symbol            string `json:"symbol"`
	Action            string `json:"action"`
	Exchange          string `json:"exchange"`
	PriceType         string `json:"pricetype"`
	Product           string `json:"product"`
	Quantity          string `json:"quantity"`
	Price             string `json:"price,omitempty"`
	TriggerPrice      string `json:"trigger_price,omitempty"`
	DisclosedQuantity string `json:"disclosed_quantity,omitempty"`
}

type ModifyOrderRequest struct {
	APIKey            string `json:"apikey"`
	OrderID           string `json:"orderid"`
	Strategy          string `json:"strategy"`
	Symbol            string `json:"symbol"`
	Action            string `json:"action"`
	Exchange          string `json:"exchange"`
	PriceType         string `json:"pricetype"`
	Product           string `json:"product"`
	Quantity          string `json:"quantity"`
	Price             string `json:"price"`
	DisclosedQuantity string `json:"disclosed_quantity,omitempty"`
	TriggerPrice      string `json:"trigger_price,omitempty"`
}

type CancelOrderRequest struct {
	APIKey   string `json:"apikey"`
	OrderID  string `json:"orderid"`
	Strategy string `json:"strategy"`
}

type CancelAllOrderRequest struct {
	APIKey   string `json:"apikey"`
	Strategy string `json:"strategy"`
}

type CancelAllOrderResponse struct {
	StatusResponse
	CanceledOrders      []string `json:"canceled_orders,omitempty"`
	FailedCancellations []string `json:"failed_cancellations,omitempty"`
}

type OrderStatusRequest struct {
	APIKey   string `json:"apikey"`
	OrderID  string `json:"orderid"`
	Strategy string `json:"strategy"`
}

type OrderStatusData struct {
	Action       string  `json:"action"`
	AveragePrice float64 `json:"average_price"`
	Exchange     string  `json:"exchange"`
	OrderStatus  string  `json:"order_status"`
	OrderID      string  `json:"orderid"`
	Price        float64 `json:"price"`
	PriceType    string  `json:"pricetype"`
	Product      string  `json:"product"`
	Quantity     string  `json:"quantity"`
	Symbol       string  `json:"symbol"`
	Timestamp    string  `json:"timestamp"`
	TriggerPrice float64 `json:"trigger_price"`
}

type OrderStatusResponse struct {
	StatusResponse
	Data *OrderStatusData `json:"data,omitempty"`
}

/////////////////////////////////////////////////////////////////////////////
////////////////////////////////// DATA /////////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// SymbolRequest addresses a single instrument.
type SymbolRequest struct {
	APIKey   string `json:"apikey"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

type QuotesData struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Ltp       float64 `json:"ltp"`
	Ask       float64 `json:"ask"`
	Bid       float64 `json:"bid"`
	PrevClose float64 `json:"prev_close"`
	Volume    int64   `json:"volume"`
	OI        int64   `json:"oi"`
}

type QuotesResponse struct {
	StatusResponse
	Data *QuotesData `json:"data,omitempty"`
}

type MultiQuotesSymbol struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

type MultiQuotesRequest struct {
	APIKey  string              `json:"apikey"`
	Symbols []MultiQuotesSymbol `json:"symbols"`
}

type MultiQuotesResult struct {
	Symbol   string      `json:"symbol"`
	Exchange string      `json:"exchange"`
	Data     *QuotesData `json:"data,omitempty"`
}

type MultiQuotesResponse struct {
	StatusResponse
	Results []MultiQuotesResult `json:"results,omitempty"`
}

// MarketDepth is the REST depth snapshot. It differs from the streamed
// DepthData by carrying aggregate buy/sell quantities.
type MarketDepth struct {
	Open         float64      `json:"open"`
	High         float64      `json:"high"`
	Low          float64      `json:"low"`
	Ltp          float64      `json:"ltp"`
	Ltq          int64        `json:"ltq"`
	PrevClose    float64      `json:"prev_close"`
	Volume       int64        `json:"volume"`
	OI           int64        `json:"oi"`
	TotalBuyQty  int64        `json:"totalbuyqty"`
	TotalSellQty int64        `json:"totalsellqty"`
	Asks         []DepthLevel `json:"asks,omitempty"`
	Bids         []DepthLevel `json:"bids,omitempty"`
}

type DepthResponse struct {
	StatusResponse
	Data *MarketDepth `json:"data,omitempty"`
}

type HistoryRequest struct {
	APIKey    string `json:"apikey"`
	Symbol    string `json:"symbol"`
	Exchange  string `json:"exchange"`
	Interval  string `json:"interval"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type HistoryCandle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// HistoryResponse keeps the data payload raw since its shape depends on the
// broker behind the server.
type HistoryResponse struct {
	StatusResponse
	Data json.RawMessage `json:"data,omitempty"`
}

// Candles decodes the payload as a list of candles.
func (r HistoryResponse) Candles() ([]HistoryCandle, error) {
	if len(r.Data) == 0 {
		return nil, nil
	}
	var candles []HistoryCandle
	if err := json.Unmarshal(r.Data, &candles); err != nil {
		return nil, fmt.Errorf("decode history candles: %w", err)
	}
	return candles, nil
}

type IntervalsData struct {
	Months  []string `json:"months"`
	Weeks   []string `json:"weeks"`
	Days    []string `json:"days"`
	Hours   []string `json:"hours"`
	Minutes []string `json:"minutes"`
	Seconds []string `json:"seconds"`
}

type IntervalsResponse struct {
	StatusResponse
	Data *IntervalsData `json:"data,omitempty"`
}

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// ACCOUNT ///////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

type FundsData struct {
	AvailableCash  string `json:"availablecash"`
	Collateral     string `json:"collateral"`
	M2MRealized    string `json:"m2mrealized"`
	M2MUnrealized  string `json:"m2munrealized"`
	UtilisedDebits string `json:"utiliseddebits"`
}

type FundsResponse struct {
	StatusResponse
	Data *FundsData `json:"data,omitempty"`
}

type OrderbookOrder struct {
	Action       string  `json:"action"`
	Symbol       string  `json:"symbol"`
	Exchange     string  `json:"exchange"`
	OrderID      string  `json:"orderid"`
	Product      string  `json:"product"`
	Quantity     string  `json:"quantity"`
	Price        float64 `json:"price"`
	PriceType    string  `json:"pricetype"`
	OrderStatus  string  `json:"order_status"`
	TriggerPrice float64 `json:"trigger_price"`
	Timestamp    string  `json:"timestamp"`
}

type OrderbookStatistics struct {
	TotalBuyOrders       float64 `json:"total_buy_orders"`
	TotalSellOrders      float64 `json:"total_sell_orders"`
	TotalCompletedOrders float64 `json:"total_completed_orders"`
	TotalOpenOrders      float64 `json:"total_open_orders"`
	TotalRejectedOrders  float64 `json:"total_rejected_orders"`
}

type OrderbookData struct {
	Orders     []OrderbookOrder     `json:"orders"`
	Statistics *OrderbookStatistics `json:"statistics,omitempty"`
}

type OrderbookResponse struct {
	StatusResponse
	Data *OrderbookData `json:"data,omitempty"`
}

type PositionbookPosition struct {
	Symbol       string `json:"symbol"`
	Exchange     string `json:"exchange"`
	Product      string `json:"product"`
	Quantity     string `json:"quantity"`
	AveragePrice string `json:"average_price"`
	Ltp          string `json:"ltp"`
	Pnl          string `json:"pnl"`
}

type PositionbookResponse struct {
	StatusResponse
	Data []PositionbookPosition `json:"data,omitempty"`
}

type HoldingItem struct {
	Symbol     string  `json:"symbol"`
	Exchange   string  `json:"exchange"`
	Product    string  `json:"product"`
	Quantity   int32   `json:"quantity"`
	Pnl        float64 `json:"pnl"`
	PnlPercent float64 `json:"pnlpercent"`
}

type HoldingsStatistics struct {
	TotalHoldingValue  float64 `json:"totalholdingvalue"`
	TotalInvValue      float64 `json:"totalinvvalue"`
	TotalProfitAndLoss float64 `json:"totalprofitandloss"`
	TotalPnlPercentage float64 `json:"totalpnlpercentage"`
}

type HoldingsData struct {
	Holdings   []HoldingItem       `json:"holdings"`
	Statistics *HoldingsStatistics `json:"statistics,omitempty"`
}

type HoldingsResponse struct {
	StatusResponse
	Data *HoldingsData `json:"data,omitempty"`
}
