package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		raw     string
		want    Style
		wantErr bool
	}{
		{raw: "editorial", want: StyleEditorial},
		{raw: " Vintage ", want: StyleVintage},
		{raw: "DRAMATIC", want: StyleDramatic},
		{raw: "cinematic", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseStyle(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedStyle) {
					t.Fatalf("ParseStyle(%q) error = %v, want ErrUnsupportedStyle", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStyle(%q) error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseStyle(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestStylesReturnsCopy(t *testing.T) {
	styles := Styles()
	if len(styles) != 5 {
		t.Fatalf("expected 5 styles, got %d", len(styles))
	}
	styles[0].Label = "changed"
	if Styles()[0].Label != "Editorial" {
		t.Fatal("Styles must not expose the catalog")
	}
	if !DefaultStyle.Valid() {
		t.Fatal("default style must be valid")
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	valid := GenerationRequest{ImageData: "data:image/jpeg;base64,AAAA", Prompt: "neon portrait", Style: StyleEditorial}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name string
		req  GenerationRequest
		want error
	}{
		{name: "missing image", req: GenerationRequest{Prompt: "x", Style: StyleVintage}, want: ErrMissingImage},
		{name: "blank prompt", req: GenerationRequest{ImageData: "d", Prompt: " \t\n", Style: StyleVintage}, want: ErrEmptyPrompt},
		{name: "unknown style", req: GenerationRequest{ImageData: "d", Prompt: "x", Style: "fantasy"}, want: ErrUnsupportedStyle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNormalizePrompt(t *testing.T) {
	decomposed := "  cafe\u0301 at dusk "
	if got := NormalizePrompt(decomposed); got != "caf\u00e9 at dusk" {
		t.Fatalf("NormalizePrompt = %q", got)
	}
}

func TestErrorClassification(t *testing.T) {
	overloaded := NewAPIError(MessageOverloaded)
	if !IsOverloaded(overloaded) {
		t.Fatal("expected overloaded")
	}
	if !IsOverloaded(fmt.Errorf("attempt 2: %w", overloaded)) {
		t.Fatal("expected wrapped overloaded")
	}
	if IsOverloaded(NewAPIError("quota")) || IsOverloaded(errors.New(MessageOverloaded)) {
		t.Fatal("only APIError with the overloaded message is retryable")
	}
	if !IsAborted(ErrRequestAborted) || !errors.Is(NewAPIError(MessageRequestAborted), ErrRequestAborted) {
		t.Fatal("expected aborted")
	}
}

func TestFailureMessage(t *testing.T) {
	if got := FailureMessage(NewAPIError("")); got != MessageGenerationFailed {
		t.Fatalf("empty message = %q", got)
	}
	if got := FailureMessage(NewAPIError("Content policy violation")); got != "Content policy violation" {
		t.Fatalf("api message = %q", got)
	}
	if got := FailureMessage(nil); got != MessageGenerationFailed {
		t.Fatalf("nil = %q", got)
	}
	if got := FailureMessage(errors.New("boom")); got != "boom" {
		t.Fatalf("plain error = %q", got)
	}
}
