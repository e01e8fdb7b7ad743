package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMissingImage     = errors.New("image is required")
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrUnsupportedStyle = errors.New("unsupported style")
	ErrBusy             = errors.New("generation already in progress")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrNotAnImage       = errors.New("file is not an image")

	// ErrRequestAborted is returned by generation clients that observed a
	// cancelled token.
	ErrRequestAborted = &APIError{Message: MessageRequestAborted}
)

const (
	// MessageOverloaded marks the only retryable client failure.
	MessageOverloaded = "Model overloaded"
	// MessageRequestAborted is the client's cancellation message.
	MessageRequestAborted = "Request was aborted"
	// MessageGenerationFailed is surfaced when a failure carries no message.
	MessageGenerationFailed = "Generation failed"
)

// APIError is the failure shape produced by generation clients. Only the
// message is meaningful to callers.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches API errors by message so wrapped copies compare equal.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Message == t.Message
}

// NewAPIError builds a client failure carrying message.
func NewAPIError(message string) *APIError {
	return &APIError{Message: message}
}

// IsOverloaded reports whether err is the transient "overloaded" condition.
func IsOverloaded(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Message == MessageOverloaded
}

// IsAborted reports whether err is the client's cancellation signal.
func IsAborted(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Message == MessageRequestAborted
}

// FailureMessage extracts the human readable message for a terminal failure.
func FailureMessage(err error) string {
	if err == nil {
		return MessageGenerationFailed
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return MessageGenerationFailed
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return MessageGenerationFailed
}
