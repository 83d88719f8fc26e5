package client

import (
	"context"

	"openalgo/models"
)

const (
	PriceTypeMarket = "MARKET"
	PriceTypeLimit  = "LIMIT"
	PriceTypeSL     = "SL"
	PriceTypeSLM    = "SL-M"
)

// OrderAPI wraps the order management endpoints. Order semantics are the
// server's; requests are forwarded as given apart from the API key.
type OrderAPI struct {
	client *Client
}

func NewOrderAPI(c *Client) *OrderAPI {
	return &OrderAPI{client: c}
}

func (a *OrderAPI) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.OrderResponse, error) {
	req.APIKey = a.client.APIKey()
	var resp models.OrderResponse
	if err := a.client.Post(ctx, "placeorder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlaceLimitOrder places req as a LIMIT order at price.
func (a *OrderAPI) PlaceLimitOrder(ctx context.Context, req models.PlaceOrderRequest, price string) (*models.OrderResponse, error) {
	req.PriceType = PriceTypeLimit
	req.Price = price
	req.TriggerPrice = ""
	return a.PlaceOrder(ctx, req)
}

// PlaceSLOrder places req as a stop-loss order.
func (a *OrderAPI) PlaceSLOrder(ctx context.Context, req models.PlaceOrderRequest, price, triggerPrice string) (*models.OrderResponse, error) {
	req.PriceType = PriceTypeSL
	req.Price = price
	req.TriggerPrice = triggerPrice
	return a.PlaceOrder(ctx, req)
}

func (a *OrderAPI) ModifyOrder(ctx context.Context, req models.ModifyOrderRequest) (*models.OrderResponse, error) {
	req.APIKey = a.client.APIKey()
	var resp models.OrderResponse
	if err := a.client.Post(ctx, "modifyorder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAPI) CancelOrder(ctx context.Context, orderID, strategy string) (*models.OrderResponse, error) {
	req := models.CancelOrderRequest{APIKey: a.client.APIKey(), OrderID: orderID, Strategy: strategy}
	var resp models.OrderResponse
	if err := a.client.Post(ctx, "cancelorder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAPI) CancelAllOrder(ctx context.Context, strategy string) (*models.CancelAllOrderResponse, error) {
	req := models.CancelAllOrderRequest{APIKey: a.client.APIKey(), Strategy: strategy}
	var resp models.CancelAllOrderResponse
	if err := a.client.Post(ctx, "cancelallorder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAPI) OrderStatus(ctx context.Context, orderID, strategy string) (*models.OrderStatusResponse, error) {
	req := models.OrderStatusRequest{APIKey: a.client.APIKey(), OrderID: orderID, Strategy: strategy}
	var resp models.OrderStatusResponse
	if err := a.client.Post(ctx, "orderstatus", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
