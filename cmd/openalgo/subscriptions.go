package main

import (
	"context"
	"fmt"
	"strings"

	"openalgo/config"
	"openalgo/internal/symbols"
	"openalgo/models"
	"openalgo/stream"
)

type subscriptions map[models.Mode][]models.Instrument

// mergeSubscriptions parses the configured lists, replacing a mode's list
// when the matching flag is non-empty.
func mergeSubscriptions(cfg config.SubscriptionsConfig, ltp, quote, depth string) (subscriptions, error) {
	sources := []struct {
		mode     models.Mode
		fromCfg  []string
		fromFlag string
	}{
		{models.ModeLTP, cfg.LTP, ltp},
		{models.ModeQuote, cfg.Quote, quote},
		{models.ModeDepth, cfg.Depth, depth},
	}

	subs := make(subscriptions)
	for _, src := range sources {
		entries := src.fromCfg
		if strings.TrimSpace(src.fromFlag) != "" {
			entries = []string{src.fromFlag}
		}
		list, err := symbols.ParseList(entries)
		if err != nil {
			return nil, fmt.Errorf("%s subscriptions: %w", src.mode, err)
		}
		if len(list) > 0 {
			subs[src.mode] = list
		}
	}
	return subs, nil
}

func (s subscriptions) empty() bool { return len(s) == 0 }

// apply queues one subscribe command per mode in tag order.
func (s subscriptions) apply(ctx context.Context, sub *stream.Subscriber) error {
	for _, mode := range models.Modes {
		list, ok := s[mode]
		if !ok {
			continue
		}
		if err := sub.Subscribe(ctx, mode, list); err != nil {
			return fmt.Errorf("subscribe %s: %w", mode, err)
		}
	}
	return nil
}
