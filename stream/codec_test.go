package stream

import (
	"testing"

	"openalgo/models"
)

func TestDecodeLtp(t *testing.T) {
	frame := `{"type":"market_data","mode":1,"data":{"exchange":"NSE","symbol":"RELIANCE","ltp":2500.5,"timestamp":1700000000}}`
	ev, ok := Decode([]byte(frame))
	if !ok {
		t.Fatal("expected frame to decode")
	}
	if ev.Kind != EventLtp || ev.Ltp == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if models.StringValue(ev.Ltp.Exchange) != "NSE" || models.StringValue(ev.Ltp.Symbol) != "RELIANCE" {
		t.Fatalf("unexpected instrument: %+v", ev.Ltp)
	}
	if models.Float64Value(ev.Ltp.Ltp) != 2500.5 || models.Int64Value(ev.Ltp.Timestamp) != 1700000000 {
		t.Fatalf("unexpected values: %+v", ev.Ltp)
	}
	if ev.IsTerminal() {
		t.Fatal("data events are not terminal")
	}
}

func TestDecodeQuote(t *testing.T) {
	frame := `{"type":"market_data","mode":2,"data":{"exchange":"NSE","symbol":"TCS","ltp":3500,"open":3450,"high":3510,"low":3440,"close":3460,"volume":120000,"timestamp":1700000001}}`
	ev, ok := Decode([]byte(frame))
	if !ok || ev.Kind != EventQuote || ev.Quote == nil {
		t.Fatalf("unexpected event: %+v %v", ev, ok)
	}
	q := ev.Quote
	if models.Float64Value(q.Open) != 3450 || models.Float64Value(q.High) != 3510 ||
		models.Float64Value(q.Low) != 3440 || models.Float64Value(q.Close) != 3460 {
		t.Fatalf("unexpected ohlc: %+v", q)
	}
	if models.Int64Value(q.Volume) != 120000 {
		t.Fatalf("unexpected volume: %v", q.Volume)
	}
}

func TestDecodeDepthKeepsWireOrder(t *testing.T) {
	frame := `{"mode":3,"data":{"symbol":"INFY","bids":[{"price":1500,"quantity":10},{"price":1499.5,"quantity":20}],"asks":[{"price":1500.5,"quantity":5}]}}`
	ev, ok := Decode([]byte(frame))
	if !ok || ev.Kind != EventDepth || ev.Depth == nil {
		t.Fatalf("unexpected event: %+v %v", ev, ok)
	}
	d := ev.Depth
	if len(d.Bids) != 2 || d.Bids[0].Price != 1500 || d.Bids[1].Price != 1499.5 || d.Bids[1].Quantity != 20 {
		t.Fatalf("unexpected bids: %+v", d.Bids)
	}
	if len(d.Asks) != 1 || d.Asks[0].Quantity != 5 {
		t.Fatalf("unexpected asks: %+v", d.Asks)
	}
	if d.Exchange != nil {
		t.Fatalf("absent exchange should be nil, got %q", *d.Exchange)
	}
}

func TestDecodeDepthWithoutLadder(t *testing.T) {
	ev, ok := Decode([]byte(`{"mode":3,"data":{"symbol":"INFY","ltp":1500}}`))
	if !ok || ev.Kind != EventDepth {
		t.Fatalf("unexpected event: %+v %v", ev, ok)
	}
	if ev.Depth.Bids != nil || ev.Depth.Asks != nil {
		t.Fatalf("expected nil ladders: %+v", ev.Depth)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	ev, ok := Decode([]byte(`{"mode":1,"data":{}}`))
	if !ok || ev.Kind != EventLtp {
		t.Fatalf("unexpected event: %+v %v", ev, ok)
	}
	if ev.Ltp.Exchange != nil || ev.Ltp.Symbol != nil || ev.Ltp.Ltp != nil || ev.Ltp.Timestamp != nil {
		t.Fatalf("expected all fields nil: %+v", ev.Ltp)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"mode absent", `{"type":"market_data","data":{"ltp":1}}`, "Unknown mode: 0"},
		{"mode zero", `{"mode":0,"data":{}}`, "Unknown mode: 0"},
		{"mode four", `{"mode":4,"data":{}}`, "Unknown mode: 4"},
		{"mode negative", `{"mode":-2}`, "Unknown mode: -2"},
		{"ltp wrong type", `{"mode":1,"data":{"ltp":"abc"}}`, "Failed to parse LTP data"},
		{"ltp missing data", `{"mode":1}`, "Failed to parse LTP data"},
		{"ltp null data", `{"mode":1,"data":null}`, "Failed to parse LTP data"},
		{"ltp array data", `{"mode":1,"data":[1,2]}`, "Failed to parse LTP data"},
		{"quote wrong type", `{"mode":2,"data":{"volume":"many"}}`, "Failed to parse Quote data"},
		{"quote fractional volume", `{"mode":2,"data":{"volume":1.5}}`, "Failed to parse Quote data"},
		{"depth level missing quantity", `{"mode":3,"data":{"bids":[{"price":1}]}}`, "Failed to parse Depth data"},
		{"depth level missing price", `{"mode":3,"data":{"asks":[{"quantity":1}]}}`, "Failed to parse Depth data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Decode([]byte(tt.frame))
			if !ok {
				t.Fatal("expected an event")
			}
			if ev.Kind != EventError || ev.Message != tt.want {
				t.Fatalf("got %v %q, want error %q", ev.Kind, ev.Message, tt.want)
			}
			if ev.Ltp != nil || ev.Quote != nil || ev.Depth != nil {
				t.Fatalf("error event carries a payload: %+v", ev)
			}
			if ev.IsTerminal() {
				t.Fatal("decode errors are not terminal")
			}
		})
	}
}

func TestDecodeDropsNonEnvelope(t *testing.T) {
	for _, frame := range []string{"", "hello", "null", "[1,2,3]", `"text"`, `{"mode":"1"}`, `{"mode":1.5}`} {
		if ev, ok := Decode([]byte(frame)); ok {
			t.Errorf("Decode(%q) = %+v, want dropped", frame, ev)
		}
	}
}

func TestDecodeEnvelopeKeysAreCaseSensitive(t *testing.T) {
	tests := []struct {
		frame string
		want  string
	}{
		{`{"MODE":1,"DATA":{"LTP":5,"Symbol":"X"}}`, "Unknown mode: 0"},
		{`{"Mode":2,"data":{"ltp":5}}`, "Unknown mode: 0"},
		{`{"mode":1,"Data":{"ltp":5}}`, "Failed to parse LTP data"},
	}
	for _, tt := range tests {
		ev, ok := Decode([]byte(tt.frame))
		if !ok {
			t.Fatalf("Decode(%s) dropped the frame", tt.frame)
		}
		if ev.Kind != EventError || ev.Message != tt.want {
			t.Errorf("Decode(%s) = %v %q, want error %q", tt.frame, ev.Kind, ev.Message, tt.want)
		}
	}

	if _, ok := Decode([]byte(`{"type":5,"mode":1,"data":{}}`)); ok {
		t.Error("expected a non-string type to drop the frame")
	}
}
