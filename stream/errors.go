package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL matches connection errors caused by a malformed endpoint.
	ErrInvalidURL = errors.New("invalid websocket url")
	// ErrTransport matches connection errors raised by the dial or the
	// authentication write.
	ErrTransport = errors.New("websocket transport failure")
	// ErrChannelClosed is returned by command sends once the writer has exited.
	ErrChannelClosed = errors.New("command channel closed")
)

type ConnectionErrorKind int

const (
	InvalidURL ConnectionErrorKind = iota + 1
	TransportFailure
)

func (k ConnectionErrorKind) String() string {
	switch k {
	case InvalidURL:
		return "invalid url"
	case TransportFailure:
		return "transport failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ConnectionError is returned by Connect. It is fatal to that attempt only.
type ConnectionError struct {
	Kind ConnectionErrorKind
	URL  string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connect %s: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("connect %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *ConnectionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Kind {
	case InvalidURL:
		errs = append(errs, ErrInvalidURL)
	case TransportFailure:
		errs = append(errs, ErrTransport)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
