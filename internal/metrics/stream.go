package metrics

import (
	"context"
	"sync"
	"time"

	"openalgo/logger"
)

// ConnectionState labels the stream_connections counter.
type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionError        ConnectionState = "error"
)

// EmitConnectionMetric counts one connection lifecycle transition.
func EmitConnectionMetric(log *logger.Log, state ConnectionState, host string) {
	fields := logger.Fields{"state": string(state)}
	if host != "" {
		fields["host"] = host
	}
	EmitMetric(log, "stream_metrics", "stream_connections", 1, "counter", fields)
}

// EventCounter aggregates per-kind event counts so that a busy feed produces
// one metric per kind per interval instead of one per tick.
type EventCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewEventCounter() *EventCounter {
	return &EventCounter{counts: make(map[string]int64)}
}

func (c *EventCounter) Observe(kind string) {
	c.mu.Lock()
	c.counts[kind]++
	c.mu.Unlock()
}

// Flush emits the counts gathered since the previous flush and resets them.
func (c *EventCounter) Flush(log *logger.Log) map[string]int64 {
	c.mu.Lock()
	counts := c.counts
	c.counts = make(map[string]int64, len(counts))
	c.mu.Unlock()

	for kind, n := range counts {
		EmitMetric(log, "stream_metrics", "stream_events", n, "counter", logger.Fields{"kind": kind})
	}
	return counts
}

// Start flushes every interval until ctx is done, then flushes once more.
func (c *EventCounter) Start(ctx context.Context, log *logger.Log, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.Flush(log)
				return
			case <-ticker.C:
				c.Flush(log)
			}
		}
	}()
}
