package stream

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"openalgo/internal/channel"
	"openalgo/logger"
)

// reader owns the read half of the socket. It is the only producer on the
// event channel once Connect returns, and closes it on exit.
type reader struct {
	conn    *websocket.Conn
	events  *channel.Bounded[Event]
	quit    <-chan struct{}
	closing <-chan struct{}
	done    chan struct{}
	stall   *rate.Limiter
	log     *logger.Entry
}

func (r *reader) run() {
	defer close(r.done)
	defer r.events.Close()

	for {
		msgType, frame, err := r.conn.ReadMessage()
		if err != nil {
			ev := r.terminalEvent(err)
			r.log.WithError(err).WithField("event", ev.Kind.String()).Debug("websocket read loop ended")
			r.emit(ev)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		logger.IncrementFrameRead(len(frame))

		ev, ok := Decode(frame)
		if !ok {
			r.log.WithField("size", len(frame)).Debug("dropping non-envelope frame")
			continue
		}
		if ev.Kind == EventError {
			logger.IncrementDecodeError()
			r.log.WithField("reason", ev.Message).Debug("failed to decode market data")
		}
		if !r.emit(ev) {
			r.log.Debug("event receiver closed; stopping reader")
			return
		}
	}
}

// terminalEvent maps a read error to the last event of the connection. A
// close frame from the peer, or any error after the writer began closing,
// is a disconnect. Everything else, including a drop without a close frame,
// is a transport error.
func (r *reader) terminalEvent(err error) Event {
	select {
	case <-r.closing:
		return disconnectedEvent()
	default:
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
		return disconnectedEvent()
	}
	return transportErrorEvent(err.Error())
}

// emit blocks until the consumer makes room. It returns false when the
// receiver has been closed.
func (r *reader) emit(ev Event) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	sent, waited := r.events.Send(context.Background(), r.quit, ev)
	if waited && r.stall.Allow() {
		r.log.WithFields(logger.Fields{
			"capacity": r.events.Cap(),
			"stats":    r.events.GetStats(),
		}).Warn("event channel full; reader waiting on consumer")
	}
	if sent {
		logger.IncrementEventEmitted()
	}
	return sent
}
