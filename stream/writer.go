package stream

import (
	"time"

	"github.com/gorilla/websocket"

	"openalgo/internal/channel"
	"openalgo/logger"
)

// writer owns the write half of the socket and is the only goroutine that
// closes it.
type writer struct {
	conn         *websocket.Conn
	commands     *channel.Bounded[Command]
	closing      chan struct{}
	readerDone   <-chan struct{}
	done         chan struct{}
	closeGrace   time.Duration
	pingInterval time.Duration
	log          *logger.Entry
}

func (w *writer) run() {
	defer close(w.done)

	var ping <-chan time.Time
	if w.pingInterval > 0 {
		ticker := time.NewTicker(w.pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case cmd, ok := <-w.commands.C:
			if !ok {
				w.log.Debug("command channel closed; closing socket")
				close(w.closing)
				w.conn.Close()
				return
			}
			if cmd.Action == ActionDisconnect {
				w.disconnect()
				return
			}
			w.write(cmd)
		case <-ping:
			deadline := time.Now().Add(defaultWriteTimeout)
			if err := w.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				w.log.WithError(err).Debug("failed to send websocket ping")
			}
		case <-w.readerDone:
			w.log.Debug("reader exited; closing socket")
			w.conn.Close()
			return
		}
	}
}

// write sends one command frame. Failures are logged and dropped; the
// consumer learns about a dead socket from the event channel.
func (w *writer) write(cmd Command) {
	frame, err := cmd.Render()
	if err != nil {
		w.log.WithError(err).Debug("failed to render command")
		return
	}
	w.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		w.log.WithError(err).WithField("action", cmd.Action.String()).Debug("failed to write command")
		return
	}
	logger.IncrementCommandWritten(len(frame))
	w.log.WithFields(logger.Fields{
		"action":      cmd.Action.String(),
		"mode":        cmd.Mode.String(),
		"instruments": len(cmd.Instruments),
	}).Debug("command sent")
}

// disconnect starts the close handshake and waits for the reader to see the
// peer's reply. Commands still queued are discarded.
func (w *writer) disconnect() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(defaultWriteTimeout)); err != nil {
		w.log.WithError(err).Debug("failed to send close frame")
	}
	close(w.closing)

	timer := time.NewTimer(w.closeGrace)
	defer timer.Stop()
	select {
	case <-w.readerDone:
	case <-timer.C:
		w.log.WithField("grace_period", w.closeGrace.String()).Debug("close handshake timed out")
	}
	w.conn.Close()
	w.log.Info("websocket disconnected")
}
