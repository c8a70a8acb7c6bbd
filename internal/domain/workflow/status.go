package workflow

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a task node.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// AllStatuses returns every valid task status in board-column order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusRunning, StatusDone, StatusFailed}
}

// IsValid returns true if the status is a known task status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusDone, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further execution is expected.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// DisplayName returns the board-column label used by the kanban projection.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "BACKLOG"
	case StatusRunning:
		return "PROCESSING"
	case StatusDone:
		return "COMMITTED"
	case StatusFailed:
		return "HALTED"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as pending for backward compatibility
	if str == "" {
		*s = StatusPending
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", str)
	}

	*s = status
	return nil
}
