package ollama

import (
	"errors"
	"fmt"
)

// Kind categorizes client errors for handling.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport means the daemon could not be reached or the connection
	// broke mid-request.
	KindTransport
	// KindProtocol means the daemon answered with something other than the
	// expected JSON shape.
	KindProtocol
	// KindNotFound means the daemon does not know the requested model.
	KindNotFound
	// KindUnsupportedTransport means the response cannot be consumed as an
	// incremental stream.
	KindUnsupportedTransport
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindNotFound:
		return "not found"
	case KindUnsupportedTransport:
		return "unsupported transport"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	Kind    Kind
	Op      string // "list", "delete", "pull"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on kind against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrTransport            = &Error{Kind: KindTransport}
	ErrProtocol             = &Error{Kind: KindProtocol}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrUnsupportedTransport = &Error{Kind: KindUnsupportedTransport}
)

func newError(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func IsTransport(err error) bool            { return errors.Is(err, ErrTransport) }
func IsProtocol(err error) bool             { return errors.Is(err, ErrProtocol) }
func IsNotFound(err error) bool             { return errors.Is(err, ErrNotFound) }
func IsUnsupportedTransport(err error) bool { return errors.Is(err, ErrUnsupportedTransport) }
