package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrRecognitionUnsupported indicates no recognition engine is available.
	ErrRecognitionUnsupported = errors.New("speech recognition not supported")

	// ErrAlreadyStarted is returned when a running session is started again.
	ErrAlreadyStarted = errors.New("recognition already started")

	// ErrNotStarted is returned when an idle session is stopped.
	ErrNotStarted = errors.New("recognition not started")
)

// ErrorCode identifies a class of engine failure.
type ErrorCode string

const (
	CodeSynthesis    ErrorCode = "synthesis"
	CodeAudioDevice  ErrorCode = "audio-device"
	CodeNetwork      ErrorCode = "network"
	CodeAudioCapture ErrorCode = "audio-capture"
	CodeNotAllowed   ErrorCode = "not-allowed"
	CodeAborted      ErrorCode = "aborted"
	CodeUnsupported  ErrorCode = "unsupported"
)

// Error is an engine error with a code.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewError creates an engine error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
