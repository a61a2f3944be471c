package pull

import (
	"encoding/json"
)

// StatusSuccess is the status of the terminal line of a successful pull.
const StatusSuccess = "success"

// Event is one decoded line of a pull stream. Lines carry either an
// informational status, byte progress for one artifact (digest set), the
// terminal success status, or an error reported by the daemon.
type Event struct {
	Status    string `json:"status,omitempty"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// IsProgress reports whether the event updates an artifact's byte count.
func (e Event) IsProgress() bool {
	return e.Digest != ""
}

func (e Event) IsSuccess() bool {
	return e.Status == StatusSuccess
}

// ParseEvent decodes a single stream line. Unknown fields are ignored and
// missing numbers default to zero. A line that is not a JSON object yields
// a *MalformedLineError.
func ParseEvent(line string) (Event, error) {
	var ev Event
	if len(line) == 0 || line[0] != '{' {
		return Event{}, &MalformedLineError{Line: line, Err: errNotObject}
	}
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return Event{}, &MalformedLineError{Line: line, Err: err}
	}
	return ev, nil
}
