package models

import (
	"fmt"
	"strings"
)

// Instrument identifies a tradable symbol on an exchange.
type Instrument struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
}

// NewInstrument creates an instrument for the given exchange and symbol codes.
func NewInstrument(exchange, symbol string) Instrument {
	return Instrument{Exchange: exchange, Symbol: symbol}
}

func (i Instrument) String() string {
	return i.Exchange + ":" + i.Symbol
}

// Mode selects the market-data shape of a subscription. The numeric value is
// the tag carried by inbound frames.
type Mode int32

const (
	ModeLTP   Mode = 1
	ModeQuote Mode = 2
	ModeDepth Mode = 3
)

// Modes lists the supported subscription modes in tag order.
var Modes = []Mode{ModeLTP, ModeQuote, ModeDepth}

// String returns the mode name used in outbound subscription commands.
func (m Mode) String() string {
	switch m {
	case ModeLTP:
		return "ltp"
	case ModeQuote:
		return "quote"
	case ModeDepth:
		return "depth"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModeLTP && m <= ModeDepth
}

// ParseMode converts a wire mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ltp":
		return ModeLTP, nil
	case "quote":
		return ModeQuote, nil
	case "depth":
		return ModeDepth, nil
	}
	return 0, fmt.Errorf("unknown subscription mode %q", s)
}

// LtpData is the payload of a mode 1 (last traded price) update. Fields the
// feed omits stay nil.
type LtpData struct {
	Exchange  *string  `json:"exchange,omitempty"`
	Symbol    *string  `json:"symbol,omitempty"`
	Ltp       *float64 `json:"ltp,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
}

// QuoteData is the payload of a mode 2 (quote) update.
type QuoteData struct {
	Exchange  *string  `json:"exchange,omitempty"`
	Symbol    *string  `json:"symbol,omitempty"`
	Ltp       *float64 `json:"ltp,omitempty"`
	Open      *float64 `json:"open,omitempty"`
	High      *float64 `json:"high,omitempty"`
	Low       *float64 `json:"low,omitempty"`
	Close     *float64 `json:"close,omitempty"`
	Volume    *int64   `json:"volume,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Float64Value dereferences f, returning 0 for nil.
func Float64Value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Int64Value dereferences i, returning 0 for nil.
func Int64Value(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
