package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"openalgo/models"
)

// envelope is the generic shape of every inbound market-data frame. Type is
// informational only.
type envelope struct {
	Type *string
	Mode *int32
	Data json.RawMessage
}

// parseEnvelope matches the type, mode and data keys exactly. Differently
// cased keys are unknown keys and ignored.
func parseEnvelope(frame []byte) (*envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNoData
	}
	env := &envelope{Data: fields["data"]}
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &env.Type); err != nil {
			return nil, err
		}
	}
	if raw, ok := fields["mode"]; ok {
		if err := json.Unmarshal(raw, &env.Mode); err != nil {
			return nil, err
		}
	}
	return env, nil
}

var errNoData = errors.New("missing data")

// Decode converts one text frame into an event. It returns false when the
// frame is not an envelope at all, in which case the frame is dropped.
func Decode(frame []byte) (Event, bool) {
	env, err := parseEnvelope(frame)
	if err != nil {
		return Event{}, false
	}

	var mode int32
	if env.Mode != nil {
		mode = *env.Mode
	}

	switch models.Mode(mode) {
	case models.ModeLTP:
		var data models.LtpData
		if err := decodeData(env.Data, &data); err != nil {
			return errorEvent("Failed to parse LTP data"), true
		}
		return Event{Kind: EventLtp, Ltp: &data}, true
	case models.ModeQuote:
		var data models.QuoteData
		if err := decodeData(env.Data, &data); err != nil {
			return errorEvent("Failed to parse Quote data"), true
		}
		return Event{Kind: EventQuote, Quote: &data}, true
	case models.ModeDepth:
		var data models.DepthData
		if err := decodeData(env.Data, &data); err != nil {
			return errorEvent("Failed to parse Depth data"), true
		}
		return Event{Kind: EventDepth, Depth: &data}, true
	default:
		return errorEvent(fmt.Sprintf("Unknown mode: %d", mode)), true
	}
}

func decodeData(raw json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errNoData
	}
	return json.Unmarshal(trimmed, v)
}
