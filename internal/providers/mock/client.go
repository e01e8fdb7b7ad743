package mock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

const (
	imageWidth  = 800
	imageHeight = 600
	seedRange   = 10000
)

// Options controls the simulated backend.
type Options struct {
	// FailureRate is the probability in [0,1] that an attempt fails with
	// "Model overloaded".
	FailureRate float64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	Clock       func() time.Time
	Rand        *rand.Rand
	Logger      *infra.Logger
}

// DefaultOptions mirrors the behaviour of the hosted preview: one to two
// seconds of latency and a 20% overload rate.
func DefaultOptions() Options {
	return Options{
		FailureRate: 0.2,
		MinLatency:  time.Second,
		MaxLatency:  2 * time.Second,
	}
}

// Client simulates an image generation backend. It returns placeholder
// picsum images and fails probabilistically with the retryable error.
type Client struct {
	failureRate float64
	minLatency  time.Duration
	maxLatency  time.Duration
	clock       func() time.Time
	logger      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewClient(opts Options) *Client {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	maxLatency := opts.MaxLatency
	if maxLatency < opts.MinLatency {
		maxLatency = opts.MinLatency
	}
	return &Client{
		failureRate: min(max(opts.FailureRate, 0), 1),
		minLatency:  max(opts.MinLatency, 0),
		maxLatency:  max(maxLatency, 0),
		clock:       clock,
		logger:      logger.With().Str("component", "mock_client").Logger(),
		rng:         rng,
	}
}

// Generate waits for the simulated latency and then either fails with
// "Model overloaded" or returns a result. A cancelled ctx, before or during
// the wait, yields domain.ErrRequestAborted.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if ctx.Err() != nil {
		return domain.GenerationResult{}, domain.ErrRequestAborted
	}

	latency, fail, seed := c.roll()
	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.GenerationResult{}, domain.ErrRequestAborted
		case <-timer.C:
		}
	}
	if ctx.Err() != nil {
		return domain.GenerationResult{}, domain.ErrRequestAborted
	}

	if fail {
		c.logger.Debug().Dur("latency", latency).Msg("mock: simulated overload")
		return domain.GenerationResult{}, domain.NewAPIError(domain.MessageOverloaded)
	}

	now := c.clock()
	result := domain.GenerationResult{
		ID:        newID(now),
		ImageURL:  fmt.Sprintf("https://picsum.photos/%d/%d?random=%d", imageWidth, imageHeight, seed),
		Prompt:    req.Prompt,
		Style:     req.Style,
		CreatedAt: now,
	}
	c.logger.Debug().
		Str("id", result.ID).
		Dur("latency", latency).
		Msg("mock: generated image")
	return result, nil
}

func (c *Client) roll() (time.Duration, bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	latency := c.minLatency
	if spread := c.maxLatency - c.minLatency; spread > 0 {
		latency += time.Duration(c.rng.Int64N(int64(spread) + 1))
	}
	fail := c.rng.Float64() < c.failureRate
	seed := c.rng.IntN(seedRange)
	return latency, fail, seed
}

func newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("gen_%d_%s", now.UnixMilli(), suffix)
}
