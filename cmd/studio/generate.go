package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/domain"
	"studio/internal/generation"
	"studio/internal/intake"
	"studio/internal/providers/mock"
)

func newGenerateCmd(a *app) *cobra.Command {
	var imagePath, prompt, style string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a styled image from a photo and a prompt",
		Long: `Generate uploads the photo, waits for the backend and prints the result.
Overloaded responses are retried twice with a 1s then 2s backoff.
Press Ctrl-C to cancel a running generation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.generate(ctx, imagePath, prompt, style)
		},
	}
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to the source photo")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Describe the look you want")
	cmd.Flags().StringVarP(&style, "style", "s", string(domain.DefaultStyle), "Visual style (see `studio styles`)")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) generate(ctx context.Context, imagePath, prompt, rawStyle string) error {
	style, err := domain.ParseStyle(rawStyle)
	if err != nil {
		return err
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}

	uploads := intake.New(intake.Options{MaxBytes: a.cfg.MaxUploadBytes, Logger: &a.logger})
	contentType := mime.TypeByExtension(filepath.Ext(imagePath))
	if err := uploads.Check(contentType, info.Size()); err != nil {
		return err
	}
	img, err := uploads.Prepare(ctx, contentType, f)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	defer closeStore()
	if err != nil {
		return err
	}

	ctrl := generation.NewController(generation.Options{
		Client: mock.NewClient(mock.Options{
			FailureRate: a.cfg.MockFailureRate,
			MinLatency:  a.cfg.MockMinLatency,
			MaxLatency:  a.cfg.MockMaxLatency,
			Logger:      &a.logger,
		}),
		History:  store,
		Logger:   &a.logger,
		Observer: progress{w: a.errOut},
	})

	out := ctrl.Generate(ctx, domain.GenerationRequest{ImageData: img.DataURL, Prompt: prompt, Style: style})
	switch out.Kind {
	case generation.Succeeded:
		printEntry(a.out, out.Result)
		return nil
	case generation.Cancelled:
		fmt.Fprintln(a.out, "Generation cancelled.")
		return nil
	case generation.Rejected:
		return out.Err
	default:
		return errors.New(out.Message)
	}
}

// progress renders controller events for a terminal.
type progress struct {
	w io.Writer
}

func (p progress) AttemptStarted(attempt int) {
	if attempt == 1 {
		fmt.Fprintln(p.w, "Generating...")
		return
	}
	fmt.Fprintf(p.w, "Retrying... (Attempt %d/%d)\n", attempt, generation.MaxAttempts)
}

func (p progress) RetryScheduled(nextAttempt int, delay time.Duration) {
	fmt.Fprintf(p.w, "Model overloaded, retrying in %s\n", delay)
}

func (p progress) Succeeded(domain.GenerationResult) {}

func (p progress) Failed(message string) {
	fmt.Fprintf(p.w, "Generation failed: %s\n", message)
}

func (p progress) Cancelled() {}
