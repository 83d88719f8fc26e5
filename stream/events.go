package stream

import (
	"fmt"

	"openalgo/models"
)

type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventLtp
	EventQuote
	EventDepth
	EventDisconnected
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventLtp:
		return "ltp"
	case EventQuote:
		return "quote"
	case EventDepth:
		return "depth"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered on the event channel. Exactly one payload field is set
// for data events; Message is set for EventError.
type Event struct {
	Kind    EventKind
	Ltp     *models.LtpData
	Quote   *models.QuoteData
	Depth   *models.DepthData
	Message string

	fatal bool
}

func connectedEvent() Event    { return Event{Kind: EventConnected} }
func disconnectedEvent() Event { return Event{Kind: EventDisconnected} }

func errorEvent(msg string) Event {
	return Event{Kind: EventError, Message: msg}
}

// transportErrorEvent is the last event of a connection whose socket failed.
func transportErrorEvent(msg string) Event {
	return Event{Kind: EventError, Message: msg, fatal: true}
}

// IsTerminal reports whether no further events follow this one. Decode
// errors are not terminal; transport errors and disconnects are.
func (e Event) IsTerminal() bool {
	return e.Kind == EventDisconnected || (e.Kind == EventError && e.fatal)
}

func (e Event) String() string {
	switch e.Kind {
	case EventLtp:
		if e.Ltp != nil {
			return fmt.Sprintf("ltp %s:%s %v", models.StringValue(e.Ltp.Exchange), models.StringValue(e.Ltp.Symbol), models.Float64Value(e.Ltp.Ltp))
		}
	case EventQuote:
		if e.Quote != nil {
			return fmt.Sprintf("quote %s:%s %v", models.StringValue(e.Quote.Exchange), models.StringValue(e.Quote.Symbol), models.Float64Value(e.Quote.Ltp))
		}
	case EventDepth:
		if e.Depth != nil {
			return fmt.Sprintf("depth %s:%s bids=%d asks=%d", models.StringValue(e.Depth.Exchange), models.StringValue(e.Depth.Symbol), len(e.Depth.Bids), len(e.Depth.Asks))
		}
	case EventError:
		return "error: " + e.Message
	}
	return e.Kind.String()
}
