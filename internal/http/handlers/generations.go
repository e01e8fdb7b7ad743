package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"studio/internal/domain"
	"studio/internal/generation"
)

var errInvalidBody = errors.New("invalid request body")

// formOverhead covers multipart boundaries and the text fields.
const formOverhead = 1 << 20

type generationJSON struct {
	ImageData string `json:"image_data"`
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
}

type generationResponse struct {
	Status string                   `json:"status"`
	Result *domain.GenerationResult `json:"result,omitempty"`
}

// CreateGeneration accepts either a multipart upload (image, prompt, style)
// or a JSON body carrying an already encoded image. The request blocks until
// the generation settles; a client disconnect cancels it.
func (a *App) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	req, err := a.decodeGeneration(w, r)
	if err != nil {
		a.fail(w, err)
		return
	}

	out := a.Generator.Generate(r.Context(), req)
	switch out.Kind {
	case generation.Succeeded:
		result := out.Result
		a.json(w, http.StatusOK, generationResponse{Status: string(out.Kind), Result: &result})
	case generation.Cancelled:
		a.json(w, http.StatusOK, generationResponse{Status: string(out.Kind)})
	case generation.Rejected:
		a.fail(w, out.Err)
	default:
		a.error(w, http.StatusBadGateway, "generation_failed", out.Message)
	}
}

func (a *App) decodeGeneration(w http.ResponseWriter, r *http.Request) (domain.GenerationRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return a.decodeMultipart(w, r)
	}

	// base64 inflates the payload by a third
	r.Body = http.MaxBytesReader(w, r.Body, a.Intake.MaxBytes()*4/3+formOverhead)
	var body generationJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.GenerationRequest{}, err
		}
		return domain.GenerationRequest{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if strings.HasPrefix(body.ImageData, "data:") && !strings.HasPrefix(body.ImageData, "data:image/") {
		return domain.GenerationRequest{}, domain.ErrNotAnImage
	}
	return buildRequest(body.ImageData, body.Prompt, body.Style)
}

func (a *App) decodeMultipart(w http.ResponseWriter, r *http.Request) (domain.GenerationRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Intake.MaxBytes()+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.GenerationRequest{}, err
		}
		return domain.GenerationRequest{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.GenerationRequest{}, domain.ErrMissingImage
		}
		return domain.GenerationRequest{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := a.Intake.Check(contentType, header.Size); err != nil {
		return domain.GenerationRequest{}, err
	}
	img, err := a.Intake.Prepare(r.Context(), contentType, file)
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	return buildRequest(img.DataURL, r.FormValue("prompt"), r.FormValue("style"))
}

func buildRequest(imageData, prompt, rawStyle string) (domain.GenerationRequest, error) {
	style := domain.DefaultStyle
	if strings.TrimSpace(rawStyle) != "" {
		parsed, err := domain.ParseStyle(rawStyle)
		if err != nil {
			return domain.GenerationRequest{}, err
		}
		style = parsed
	}
	req := domain.GenerationRequest{ImageData: imageData, Prompt: prompt, Style: style}
	if err := req.Validate(); err != nil {
		return domain.GenerationRequest{}, err
	}
	return req, nil
}

func (a *App) CurrentGeneration(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Generator.State())
}

func (a *App) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	cancelled := a.Generator.Cancel()
	if cancelled {
		a.Logger.Info().Msg("generation cancelled by request")
	}
	a.json(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}
