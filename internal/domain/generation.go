package domain

import "time"

// MaxHistoryItems caps the number of generations kept in history.
const MaxHistoryItems = 5

// GenerationRequest is built per logical generation and never persisted.
type GenerationRequest struct {
	// ImageData is the encoded source image, typically a data URL.
	ImageData string
	Prompt    string
	Style     Style
}

// Validate checks the caller-side preconditions of a generation.
func (r GenerationRequest) Validate() error {
	if r.ImageData == "" {
		return ErrMissingImage
	}
	if NormalizePrompt(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if !r.Style.Valid() {
		return ErrUnsupportedStyle
	}
	return nil
}

// GenerationResult is the immutable value produced by a successful generation.
type GenerationResult struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"imageUrl"`
	Prompt    string    `json:"prompt"`
	Style     Style     `json:"style"`
	CreatedAt time.Time `json:"createdAt"`
}

// RetryState is the per-generation bookkeeping of the controller.
type RetryState struct {
	Active        bool `json:"active"`
	AttemptNumber int  `json:"attempt_number"`
	RetryCount    int  `json:"retry_count"`
	Cancelled     bool `json:"cancelled"`
}

// InitialRetryState is the state before and after every logical generation.
func InitialRetryState() RetryState {
	return RetryState{AttemptNumber: 1}
}
