package symbols

import (
	"fmt"
	"strings"

	"openalgo/models"
)

// Exchanges lists the exchange codes the server recognises.
var Exchanges = []string{"NSE", "BSE", "NFO", "BFO", "CDS", "BCD", "MCX", "NCDEX", "NSE_INDEX", "BSE_INDEX"}

// NormalizeExchange uppercases an exchange code and folds the separators
// people commonly type for the index segments.
func NormalizeExchange(exchange string) string {
	ex := strings.ToUpper(strings.TrimSpace(exchange))
	switch ex {
	case "NSEINDEX", "NSE-INDEX", "NSE INDEX":
		ex = "NSE_INDEX"
	case "BSEINDEX", "BSE-INDEX", "BSE INDEX":
		ex = "BSE_INDEX"
	}
	return ex
}

// KnownExchange reports whether exchange (after normalisation) is listed in
// Exchanges.
func KnownExchange(exchange string) bool {
	ex := NormalizeExchange(exchange)
	for _, e := range Exchanges {
		if e == ex {
			return true
		}
	}
	return false
}

// Parse reads an "EXCHANGE:SYMBOL" string.
func Parse(s string) (models.Instrument, error) {
	exchange, symbol, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return models.Instrument{}, fmt.Errorf("instrument %q: expected EXCHANGE:SYMBOL", s)
	}
	exchange = NormalizeExchange(exchange)
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if exchange == "" || symbol == "" {
		return models.Instrument{}, fmt.Errorf("instrument %q: empty exchange or symbol", s)
	}
	return models.NewInstrument(exchange, symbol), nil
}

// ParseList parses every entry, keeping order and duplicates. Entries may
// themselves be comma separated.
func ParseList(entries []string) ([]models.Instrument, error) {
	var out []models.Instrument
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			inst, err := Parse(part)
			if err != nil {
				return nil, err
			}
			out = append(out, inst)
		}
	}
	return out, nil
}
