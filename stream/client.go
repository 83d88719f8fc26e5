package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"openalgo/internal/channel"
	"openalgo/logger"
)

const (
	DefaultCommandBuffer    = 32
	DefaultEventBuffer      = 128
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultCloseGracePeriod = time.Second

	defaultWriteTimeout = 5 * time.Second
	stallWarnInterval   = 5 * time.Second
)

type options struct {
	commandBuffer    int
	eventBuffer      int
	handshakeTimeout time.Duration
	closeGracePeriod time.Duration
	pingInterval     time.Duration
	header           http.Header
}

// Option customizes a Client.
type Option func(*options)

// WithCommandBuffer sets the command channel capacity. Values below 1 are ignored.
func WithCommandBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.commandBuffer = n
		}
	}
}

// WithEventBuffer sets the event channel capacity. Values below 1 are ignored.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

// WithHandshakeTimeout bounds the WebSocket upgrade.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.handshakeTimeout = d
		}
	}
}

// WithCloseGracePeriod bounds how long the writer waits for the server to
// answer a close frame before dropping the socket.
func WithCloseGracePeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.closeGracePeriod = d
		}
	}
}

// WithPingInterval enables keepalive pings from the writer. Zero disables them.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.pingInterval = d
		}
	}
}

// WithHeader adds HTTP headers to the upgrade request.
func WithHeader(h http.Header) Option {
	return func(o *options) {
		o.header = h.Clone()
	}
}

// Client opens streaming connections. It holds no connection state and may
// be used for any number of Connect calls.
type Client struct {
	apiKey string
	wsURL  string
	opts   options
	log    *logger.Log
}

// NewClient returns a Client with default buffer sizes and timeouts, adjusted by opts.
func NewClient(apiKey, wsURL string, opts ...Option) *Client {
	o := options{
		commandBuffer:    DefaultCommandBuffer,
		eventBuffer:      DefaultEventBuffer,
		handshakeTimeout: DefaultHandshakeTimeout,
		closeGracePeriod: DefaultCloseGracePeriod,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		apiKey: apiKey,
		wsURL:  wsURL,
		opts:   o,
		log:    logger.GetLogger(),
	}
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.wsURL
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}

// Connect dials the endpoint, sends the authentication frame and starts the
// reader and writer goroutines. ctx bounds the dial and the authentication
// write only. The first event on the receiver is always EventConnected; it
// means local setup finished, not that the server accepted the key.
func (c *Client) Connect(ctx context.Context) (*CommandSender, *EventReceiver, error) {
	u, err := parseEndpoint(c.wsURL)
	if err != nil {
		return nil, nil, &ConnectionError{Kind: InvalidURL, URL: c.wsURL, Err: err}
	}

	connID := uuid.NewString()
	log := c.log.WithComponent("stream_client").WithFields(logger.Fields{
		"connection_id": connID,
		"host":          u.Host,
	})

	start := time.Now()
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.opts.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), c.opts.header)
	if err != nil {
		entry := log.WithError(err)
		if resp != nil {
			entry = entry.WithField("status", resp.StatusCode)
		}
		entry.Warn("failed to connect to websocket")
		return nil, nil, &ConnectionError{Kind: TransportFailure, URL: c.wsURL, Err: err}
	}

	if err := authenticate(ctx, conn, c.apiKey); err != nil {
		conn.Close()
		log.WithError(err).Warn("failed to send authentication frame")
		return nil, nil, &ConnectionError{Kind: TransportFailure, URL: c.wsURL, Err: err}
	}
	logger.LogPerformanceEntry(log, "stream_client", "connect", time.Since(start), nil)

	commands := channel.NewBounded[Command]("stream_commands", c.opts.commandBuffer)
	events := channel.NewBounded[Event]("stream_events", c.opts.eventBuffer)

	// The buffer has room, so this cannot block.
	events.Send(context.Background(), nil, connectedEvent())

	closing := make(chan struct{})
	quit := make(chan struct{})
	readerDone := make(chan struct{})
	writerDone := make(chan struct{})

	r := &reader{
		conn:    conn,
		events:  events,
		quit:    quit,
		closing: closing,
		done:    readerDone,
		stall:   rate.NewLimiter(rate.Every(stallWarnInterval), 1),
		log:     c.log.WithComponent("stream_reader").WithField("connection_id", connID),
	}
	w := &writer{
		conn:         conn,
		commands:     commands,
		closing:      closing,
		readerDone:   readerDone,
		done:         writerDone,
		closeGrace:   c.opts.closeGracePeriod,
		pingInterval: c.opts.pingInterval,
		log:          c.log.WithComponent("stream_writer").WithField("connection_id", connID),
	}
	go r.run()
	go w.run()

	log.WithFields(logger.Fields{
		"command_buffer": c.opts.commandBuffer,
		"event_buffer":   c.opts.eventBuffer,
	}).Info("websocket connected")

	return &CommandSender{commands: commands, done: writerDone},
		&EventReceiver{events: events, quit: quit},
		nil
}

func authenticate(ctx context.Context, conn *websocket.Conn, apiKey string) error {
	frame, err := renderAuth(apiKey)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetWriteDeadline(deadline)
	defer conn.SetWriteDeadline(time.Time{})
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return err
	}
	logger.IncrementCommandWritten(len(frame))
	return nil
}

// CommandSender is the caller's half of the command channel.
type CommandSender struct {
	commands *channel.Bounded[Command]
	done     <-chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Send queues cmd for the writer. It blocks while the channel is full and
// fails with ErrChannelClosed once the writer has exited or the sender was
// closed.
func (s *CommandSender) Send(ctx context.Context, cmd Command) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrChannelClosed
	}
	select {
	case <-s.done:
		return ErrChannelClosed
	default:
	}
	if sent, _ := s.commands.Send(ctx, s.done, cmd); sent {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrChannelClosed
}

// Close closes the command channel. The writer closes the socket and exits
// without a close handshake; use a Disconnect command for a clean close.
func (s *CommandSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.commands.Close()
}

// Done is closed when the writer goroutine has exited.
func (s *CommandSender) Done() <-chan struct{} {
	return s.done
}

// Name, Len and Cap report on the command channel.
func (s *CommandSender) Name() string { return s.commands.Name() }
func (s *CommandSender) Len() int     { return s.commands.Len() }
func (s *CommandSender) Cap() int     { return s.commands.Cap() }

// EventReceiver is the caller's half of the event channel. The channel is
// closed after the terminal event.
type EventReceiver struct {
	events *channel.Bounded[Event]
	quit   chan struct{}
	once   sync.Once
}

func (r *EventReceiver) Events() <-chan Event {
	return r.events.C
}

// Recv waits for the next event. It returns false when the channel is
// closed or ctx is done.
func (r *EventReceiver) Recv(ctx context.Context) (Event, bool) {
	select {
	case ev, ok := <-r.events.C:
		return ev, ok
	case <-ctx.Done():
		return Event{}, false
	}
}

// Close tells the reader to stop delivering events. The reader exits at its
// next delivery attempt and closes the channel.
func (r *EventReceiver) Close() {
	r.once.Do(func() { close(r.quit) })
}

// Name, Len and Cap report on the event channel.
func (r *EventReceiver) Name() string { return r.events.Name() }
func (r *EventReceiver) Len() int     { return r.events.Len() }
func (r *EventReceiver) Cap() int     { return r.events.Cap() }
