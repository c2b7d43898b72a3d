package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeUnknownRoom  = "unknown_room"
	ErrCodeUserNotFound = "user_not_found"
	ErrCodePersistence  = "persistence_failed"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeInternal     = "internal_error"
)

// ErrUnknownRoom is returned when a room name is not in the configured set.
var ErrUnknownRoom = errors.New("unknown room")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
