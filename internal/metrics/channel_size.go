package metrics

import (
	"context"
	"time"

	"openalgo/logger"
)

// Buffer is a bounded channel whose occupancy can be sampled.
type Buffer interface {
	Name() string
	Len() int
	Cap() int
}

// StartChannelSizeMetrics emits an occupancy gauge for every buffer each
// interval until ctx is done. A non-positive interval means one second.
func StartChannelSizeMetrics(ctx context.Context, interval time.Duration, buffers ...Buffer) {
	if !IsFeatureEnabled(FeatureChannelSize) || len(buffers) == 0 {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}

	log := logger.GetLogger()
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, b := range buffers {
					emitBufferLength(log, b)
				}
			}
		}
	}()
}

func emitBufferLength(log *logger.Log, b Buffer) {
	EmitMetric(log, "channel_buffers", b.Name()+"_buffer_length", b.Len(), "gauge", logger.Fields{
		"buffer":   b.Name(),
		"capacity": b.Cap(),
	})
}
