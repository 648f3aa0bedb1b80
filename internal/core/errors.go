package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNotFound             = "not_found"
	ErrCodeForbidden            = "forbidden"
	ErrCodeInvalidTransition    = "invalid_transition"
	ErrCodeDuplicateParticipant = "duplicate_participant"
	ErrCodeEmptyMessage         = "empty_message"
	ErrCodeRoomFull             = "room_full"
	ErrCodeSessionClosed        = "session_closed"
	ErrCodeBadRequest           = "bad_request"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrEmptyMessage         = errors.New("empty message")
	ErrRoomFull             = errors.New("room full")
	ErrSessionClosed        = errors.New("session closed")
)

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

// errorCode maps a domain error to its wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrForbidden):
		return ErrCodeForbidden
	case errors.Is(err, ErrInvalidTransition):
		return ErrCodeInvalidTransition
	case errors.Is(err, ErrDuplicateParticipant):
		return ErrCodeDuplicateParticipant
	case errors.Is(err, ErrEmptyMessage):
		return ErrCodeEmptyMessage
	case errors.Is(err, ErrRoomFull):
		return ErrCodeRoomFull
	case errors.Is(err, ErrSessionClosed):
		return ErrCodeSessionClosed
	default:
		return ErrCodeBadRequest
	}
}
