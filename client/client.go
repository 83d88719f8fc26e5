package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"openalgo/logger"
)

const (
	DefaultHost    = "http://127.0.0.1:5000"
	DefaultVersion = "v1"
	DefaultWSURL   = "ws://127.0.0.1:8765"
	DefaultTimeout = 30 * time.Second
)

// Config is shared read-only by every sub-API built on the same Client.
type Config struct {
	APIKey    string
	Host      string
	Version   string
	WSURL     string
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns the settings of a locally running server.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		Host:    DefaultHost,
		Version: DefaultVersion,
		WSURL:   DefaultWSURL,
		Timeout: DefaultTimeout,
	}
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}

// Client performs JSON calls against /api/{version}/{endpoint}.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Log
}

// New builds a client. Host loses any trailing slash and empty fields fall
// back to DefaultConfig.
func New(cfg Config) *Client {
	def := DefaultConfig(cfg.APIKey)
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.WSURL == "" {
		cfg.WSURL = def.WSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport},
		},
		log: logger.GetLogger(),
	}
}

// Config returns a copy of the client's settings.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) APIKey() string {
	return c.cfg.APIKey
}

func (c *Client) BuildURL(endpoint string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.cfg.Host, c.cfg.Version, endpoint)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BuildURL(endpoint), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

// Get issues a GET with the given query parameters and decodes the response
// into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	u := c.BuildURL(endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out interface{}) error {
	log := c.log.WithComponent("rest_client").WithFields(logger.Fields{
		"endpoint": endpoint,
		"method":   req.Method,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("%s %s: %w", req.Method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	logger.RecordChannelMessage("rest_"+endpoint, len(data))
	logger.LogPerformanceEntry(log, "rest_client", endpoint, time.Since(start), logger.Fields{
		"status": resp.StatusCode,
		"bytes":  len(data),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
