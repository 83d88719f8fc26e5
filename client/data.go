package client

import (
	"context"

	"openalgo/models"
)

// DataAPI wraps the market data endpoints.
type DataAPI struct {
	client *Client
}

func NewDataAPI(c *Client) *DataAPI {
	return &DataAPI{client: c}
}

func (a *DataAPI) Quotes(ctx context.Context, symbol, exchange string) (*models.QuotesResponse, error) {
	req := models.SymbolRequest{APIKey: a.client.APIKey(), Symbol: symbol, Exchange: exchange}
	var resp models.QuotesResponse
	if err := a.client.Post(ctx, "quotes", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *DataAPI) MultiQuotes(ctx context.Context, instruments []models.Instrument) (*models.MultiQuotesResponse, error) {
	req := models.MultiQuotesRequest{
		APIKey:  a.client.APIKey(),
		Symbols: make([]models.MultiQuotesSymbol, 0, len(instruments)),
	}
	for _, inst := range instruments {
		req.Symbols = append(req.Symbols, models.MultiQuotesSymbol{Symbol: inst.Symbol, Exchange: inst.Exchange})
	}
	var resp models.MultiQuotesResponse
	if err := a.client.Post(ctx, "multiquotes", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *DataAPI) Depth(ctx context.Context, symbol, exchange string) (*models.DepthResponse, error) {
	req := models.SymbolRequest{APIKey: a.client.APIKey(), Symbol: symbol, Exchange: exchange}
	var resp models.DepthResponse
	if err := a.client.Post(ctx, "depth", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the latest candles for the interval.
func (a *DataAPI) History(ctx context.Context, symbol, exchange, interval string) (*models.HistoryResponse, error) {
	return a.history(ctx, models.HistoryRequest{Symbol: symbol, Exchange: exchange, Interval: interval})
}

// HistoryRange returns candles between two YYYY-MM-DD dates.
func (a *DataAPI) HistoryRange(ctx context.Context, symbol, exchange, interval, startDate, endDate string) (*models.HistoryResponse, error) {
	return a.history(ctx, models.HistoryRequest{
		Symbol:    symbol,
		Exchange:  exchange,
		Interval:  interval,
		StartDate: startDate,
		EndDate:   endDate,
	})
}

func (a *DataAPI) history(ctx context.Context, req models.HistoryRequest) (*models.HistoryResponse, error) {
	req.APIKey = a.client.APIKey()
	var resp models.HistoryResponse
	if err := a.client.Post(ctx, "history", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *DataAPI) Intervals(ctx context.Context) (*models.IntervalsResponse, error) {
	var resp models.IntervalsResponse
	if err := a.client.Post(ctx, "intervals", models.APIKeyRequest{APIKey: a.client.APIKey()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
