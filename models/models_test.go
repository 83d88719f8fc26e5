package models

import (
	"encoding/json"
	"testing"
)

func TestInstrumentJSON(t *testing.T) {
	data, err := json.Marshal(NewInstrument("NSE", "RELIANCE"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"exchange":"NSE","symbol":"RELIANCE"}`; got != want {
		t.Fatalf("unexpected json: %s, want %s", got, want)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeLTP, "ltp"},
		{ModeQuote, "quote"},
		{ModeDepth, "depth"},
		{Mode(9), "mode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int32(tt.mode), got, tt.want)
		}
	}
	if Mode(0).Valid() || Mode(4).Valid() {
		t.Fatal("expected modes outside 1..3 to be invalid")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(" " + m.String() + " ")
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m.String(), err)
		}
		if got != m {
			t.Fatalf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if got, err := ParseMode("QUOTE"); err != nil || got != ModeQuote {
		t.Fatalf("expected case-insensitive parse, got %v, %v", got, err)
	}
	if _, err := ParseMode("snapquote"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDepthLevelRequiresFields(t *testing.T) {
	var lvl DepthLevel
	if err := json.Unmarshal([]byte(`{"price":2500.5,"quantity":10}`), &lvl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if lvl.Price != 2500.5 || lvl.Quantity != 10 {
		t.Fatalf("unexpected level: %+v", lvl)
	}

	for _, raw := range []string{`{"price":1}`, `{"quantity":1}`, `{"price":"1","quantity":1}`, `{"price":1,"quantity":1.5}`} {
		if err := json.Unmarshal([]byte(raw), &lvl); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestQuoteDataOptionalFields(t *testing.T) {
	var q QuoteData
	if err := json.Unmarshal([]byte(`{"symbol":"TCS","ltp":3500}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if StringValue(q.Symbol) != "TCS" || Float64Value(q.Ltp) != 3500 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Exchange != nil || q.Volume != nil || q.Timestamp != nil {
		t.Fatalf("absent fields should stay nil: %+v", q)
	}
}

func TestDepthBestLevels(t *testing.T) {
	d := &DepthData{
		Bids: []DepthLevel{{Price: 100, Quantity: 5}, {Price: 99, Quantity: 7}},
	}
	if bid, ok := d.BestBid(); !ok || bid.Price != 100 {
		t.Fatalf("unexpected best bid: %+v %v", bid, ok)
	}
	if _, ok := d.BestAsk(); ok {
		t.Fatal("expected no best ask")
	}
}

func TestHistoryCandles(t *testing.T) {
	var resp HistoryResponse
	raw := `{"status":"success","data":[{"timestamp":1700000000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":100}]}`
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK() {
		t.Fatal("expected success status")
	}
	candles, err := resp.Candles()
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if len(candles) != 1 || candles[0].Close != 1.5 || candles[0].Volume != 100 {
		t.Fatalf("unexpected candles: %+v", candles)
	}
}

func TestStatusResponseErr(t *testing.T) {
	if err := (StatusResponse{Status: "success"}).Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := (StatusResponse{Status: "error", Message: "Invalid openalgo apikey"}).Err()
	if err == nil || err.Error() != "openalgo: Invalid openalgo apikey" {
		t.Fatalf("unexpected error: %v", err)
	}
}
