package pull

import (
	"errors"
	"fmt"

	"github.com/nchapman/onboard/internal/ollama"
)

var (
	// ErrAlreadyInProgress is returned by Start while a session is downloading.
	ErrAlreadyInProgress = errors.New("a pull is already in progress")

	// ErrIncompleteStream means the stream ended without a success line.
	ErrIncompleteStream = errors.New("pull stream ended before success")

	// ErrIdleTimeout means no bytes arrived within the configured idle
	// timeout. It is a transport-class error.
	ErrIdleTimeout = &ollama.Error{
		Kind:    ollama.KindTransport,
		Op:      "pull",
		Message: "no data received within idle timeout",
	}

	errNotObject = errors.New("not a JSON object")
)

// MalformedLineError describes a stream line that could not be decoded. It
// is reported to observers and the log; it never ends a session.
type MalformedLineError struct {
	Line string
	Err  error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed stream line %q: %v", truncate(e.Line, 120), e.Err)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}

// RemoteError carries an error the daemon reported inside the stream.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "daemon reported: " + e.Message
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
