package client

import (
	"context"

	"openalgo/models"
)

// AccountAPI wraps the funds and book endpoints.
type AccountAPI struct {
	client *Client
}

func NewAccountAPI(c *Client) *AccountAPI {
	return &AccountAPI{client: c}
}

func (a *AccountAPI) keyRequest() models.APIKeyRequest {
	return models.APIKeyRequest{APIKey: a.client.APIKey()}
}

func (a *AccountAPI) Funds(ctx context.Context) (*models.FundsResponse, error) {
	var resp models.FundsResponse
	if err := a.client.Post(ctx, "funds", a.keyRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AccountAPI) Orderbook(ctx context.Context) (*models.OrderbookResponse, error) {
	var resp models.OrderbookResponse
	if err := a.client.Post(ctx, "orderbook", a.keyRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AccountAPI) Positionbook(ctx context.Context) (*models.PositionbookResponse, error) {
	var resp models.PositionbookResponse
	if err := a.client.Post(ctx, "positionbook", a.keyRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AccountAPI) Holdings(ctx context.Context) (*models.HoldingsResponse, error) {
	var resp models.HoldingsResponse
	if err := a.client.Post(ctx, "holdings", a.keyRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
