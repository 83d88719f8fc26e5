package channel

import (
	"context"
	"sync"

	"openalgo/logger"
)

// ChannelStats counts deliveries on a bounded channel. Blocked counts sends
// that found the buffer full and had to wait for the consumer.
type ChannelStats struct {
	Sent     int64
	Blocked  int64
	Canceled int64
}

// Bounded is a buffered channel with send statistics. Sends block while the
// buffer is full; nothing is ever dropped.
type Bounded[T any] struct {
	C chan T

	name       string
	closeOnce  sync.Once
	stats      ChannelStats
	statsMutex sync.RWMutex
	log        *logger.Log
}

// NewBounded creates a channel of the given capacity. A non-positive size
// yields an unbuffered channel.
func NewBounded[T any](name string, size int) *Bounded[T] {
	if size < 0 {
		size = 0
	}
	log := logger.GetLogger()
	c := &Bounded[T]{
		C:    make(chan T, size),
		name: name,
		log:  log,
	}

	log.WithComponent("channels").WithFields(logger.Fields{
		"channel":     name,
		"buffer_size": size,
	}).Debug("channel initialized")

	return c
}

func (c *Bounded[T]) Name() string { return c.name }

func (c *Bounded[T]) Len() int { return len(c.C) }

func (c *Bounded[T]) Cap() int { return cap(c.C) }

// Close closes the underlying channel. Only the producing side may call it,
// and it is safe to call more than once.
func (c *Bounded[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.C)
		c.log.WithComponent("channels").WithField("channel", c.name).Debug("channel closed")
	})
}

func (c *Bounded[T]) incrementSent() {
	c.statsMutex.Lock()
	c.stats.Sent++
	c.statsMutex.Unlock()
}

func (c *Bounded[T]) incrementBlocked() {
	c.statsMutex.Lock()
	c.stats.Blocked++
	c.statsMutex.Unlock()
}

func (c *Bounded[T]) incrementCanceled() {
	c.statsMutex.Lock()
	c.stats.Canceled++
	c.statsMutex.Unlock()
}

// Send delivers msg, waiting for buffer space if needed. It gives up and
// returns false when ctx is done or stop is closed. A nil stop never fires.
// The second result reports whether the send had to wait.
func (c *Bounded[T]) Send(ctx context.Context, stop <-chan struct{}, msg T) (sent bool, waited bool) {
	select {
	case c.C <- msg:
		c.incrementSent()
		return true, false
	default:
	}

	c.incrementBlocked()
	select {
	case c.C <- msg:
		c.incrementSent()
		return true, true
	case <-ctx.Done():
	case <-stop:
	}
	c.incrementCanceled()
	return false, true
}

func (c *Bounded[T]) GetStats() ChannelStats {
	c.statsMutex.RLock()
	defer c.statsMutex.RUnlock()
	return c.stats
}
