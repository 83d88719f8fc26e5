package metrics

import (
	"strings"
	"sync/atomic"

	"openalgo/config"
)

// Feature groups metrics that can be switched off together.
type Feature string

const (
	FeatureChannelSize Feature = "channel_size"
	FeatureStream      Feature = "stream"
	FeatureRecorder    Feature = "recorder"
)

type featureState struct {
	channelSize bool
}

var features atomic.Pointer[featureState]

func init() {
	features.Store(&featureState{channelSize: true})
}

// Configure applies the metrics section of the configuration.
func Configure(cfg config.MetricsConfig) {
	features.Store(&featureState{channelSize: cfg.ChannelSize})
}

// IsFeatureEnabled reports whether metrics of the given feature are emitted.
func IsFeatureEnabled(f Feature) bool {
	switch f {
	case FeatureChannelSize:
		return features.Load().channelSize
	default:
		return true
	}
}

func featureForMetric(name string) Feature {
	switch {
	case strings.HasSuffix(name, "_buffer_length"):
		return FeatureChannelSize
	case strings.HasPrefix(name, "recorder_"):
		return FeatureRecorder
	default:
		return FeatureStream
	}
}
