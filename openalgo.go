// Package openalgo is the entry point to an OpenAlgo server. One OpenAlgo
// value shares a single read-only client configuration between the REST
// sub-APIs and the streaming client.
package openalgo

import (
	"openalgo/client"
	"openalgo/config"
	"openalgo/stream"
)

type OpenAlgo struct {
	Data    *client.DataAPI
	Orders  *client.OrderAPI
	Account *client.AccountAPI

	rest *client.Client
}

// New connects to a server on the default local host and ports.
func New(apiKey string) *OpenAlgo {
	return WithConfig(client.DefaultConfig(apiKey))
}

// WithConfig builds the facade from explicit settings. Empty fields take the
// defaults of client.DefaultConfig.
func WithConfig(cfg client.Config) *OpenAlgo {
	rest := client.New(cfg)
	return &OpenAlgo{
		Data:    client.NewDataAPI(rest),
		Orders:  client.NewOrderAPI(rest),
		Account: client.NewAccountAPI(rest),
		rest:    rest,
	}
}

// FromAppConfig builds the facade from a loaded configuration file.
func FromAppConfig(cfg *config.Config) *OpenAlgo {
	return WithConfig(client.Config{
		APIKey:    cfg.Client.APIKey,
		Host:      cfg.Client.Host,
		Version:   cfg.Client.Version,
		WSURL:     cfg.Client.WSURL,
		Timeout:   cfg.Client.Timeout,
		UserAgent: cfg.Client.UserAgent,
	})
}

// Config returns a copy of the shared settings.
func (o *OpenAlgo) Config() client.Config {
	return o.rest.Config()
}

// WebSocket returns a streaming client for the configured endpoint and key.
func (o *OpenAlgo) WebSocket(opts ...stream.Option) *stream.Client {
	cfg := o.rest.Config()
	return stream.NewClient(cfg.APIKey, cfg.WSURL, opts...)
}

// StreamOptions converts the stream section of a configuration file into
// client options.
func StreamOptions(cfg config.StreamConfig) []stream.Option {
	return []stream.Option{
		stream.WithCommandBuffer(cfg.CommandBuffer),
		stream.WithEventBuffer(cfg.EventBuffer),
		stream.WithHandshakeTimeout(cfg.HandshakeTimeout),
		stream.WithCloseGracePeriod(cfg.CloseGracePeriod),
		stream.WithPingInterval(cfg.PingInterval),
	}
}
