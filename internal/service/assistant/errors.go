package assistant

import (
	"errors"
	"fmt"

	chatmodel "assistantchat/internal/model/chat"
)

var (
	// ErrRunTimeout reports a run that stayed non-terminal past the
	// configured deadline. The upstream run keeps going; only our wait ends.
	ErrRunTimeout = errors.New("assistant run timed out")

	// ErrNoAssistantReply reports a completed run whose thread holds no
	// assistant message.
	ErrNoAssistantReply = errors.New("assistant produced no reply")
)

// APIError is a non-2xx response from the upstream service.
type APIError struct {
	Status  int
	Type    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream error (status %d)", e.Status)
}

// RunError is a run that reached a terminal state other than completed.
type RunError struct {
	Status  chatmodel.RunStatus
	Code    string
	Message string
}

func (e *RunError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("assistant run %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("assistant run %s", e.Status)
}
