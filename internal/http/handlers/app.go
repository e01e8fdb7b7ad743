package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/generation"
	"studio/internal/history"
	"studio/internal/infra"
	"studio/internal/intake"
)

// Generator is the part of the generation controller the API drives.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) generation.Outcome
	Cancel() bool
	State() domain.RetryState
}

// HistoryStore is the part of the history store the API exposes.
type HistoryStore interface {
	List(ctx context.Context) []history.Entry
	Get(ctx context.Context, id string) (history.Entry, bool)
	Remove(ctx context.Context, id string)
	Clear(ctx context.Context)
}

type App struct {
	Generator Generator
	History   HistoryStore
	Intake    *intake.Intake
	Logger    zerolog.Logger
}

func NewApp(gen Generator, store HistoryStore, in *intake.Intake, logger *infra.Logger) *App {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	if in == nil {
		in = intake.New(intake.Options{Logger: logger})
	}
	return &App{Generator: gen, History: store, Intake: in, Logger: l}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errInvalidBody):
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
	case errors.Is(err, domain.ErrMissingImage):
		a.error(w, http.StatusBadRequest, "missing_image", "an image is required")
	case errors.Is(err, domain.ErrEmptyPrompt):
		a.error(w, http.StatusBadRequest, "empty_prompt", "a prompt is required")
	case errors.Is(err, domain.ErrUnsupportedStyle):
		a.error(w, http.StatusBadRequest, "unsupported_style", err.Error())
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "a generation is already in progress")
	case errors.Is(err, domain.ErrImageTooLarge), errors.As(err, &maxErr):
		a.error(w, http.StatusRequestEntityTooLarge, "image_too_large", "image must be 10MB or smaller")
	case errors.Is(err, domain.ErrNotAnImage):
		a.error(w, http.StatusUnsupportedMediaType, "not_an_image", "upload must be an image")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	default:
		a.Logger.Error().Err(err).Msg("unhandled request error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
