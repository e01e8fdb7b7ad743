package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

const (
	// MaxAttempts bounds the physical attempts of one logical generation.
	MaxAttempts = 3
	// BaseDelay is the wait before the second attempt; each later wait doubles.
	BaseDelay = time.Second
	// MaxDelay caps a single backoff wait.
	MaxDelay = 4 * time.Second
)

// ErrNoClient rejects generations on a controller built without a client.
var ErrNoClient = errors.New("generation: client is required")

// Client is the generation backend. Implementations must honour ctx and
// return *domain.APIError values on failure.
type Client interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// Recorder receives each successful result exactly once.
type Recorder interface {
	Record(ctx context.Context, result domain.GenerationResult)
}

// Options wires the controller's collaborators. Client is required.
type Options struct {
	Client   Client
	History  Recorder
	Logger   *infra.Logger
	Sleeper  Sleeper
	Observer Observer
}

// Controller drives one logical generation at a time through the
// retry/backoff state machine.
type Controller struct {
	client   Client
	history  Recorder
	logger   zerolog.Logger
	sleeper  Sleeper
	observer Observer

	mu     sync.Mutex
	state  domain.RetryState
	cancel context.CancelFunc
}

// NewController builds a controller. Missing optional collaborators fall back
// to no-ops and a timer based sleeper.
func NewController(opts Options) *Controller {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	return &Controller{
		client:   opts.Client,
		history:  opts.History,
		logger:   logger.With().Str("component", "generation").Logger(),
		sleeper:  sleeper,
		observer: opts.Observer,
		state:    domain.InitialRetryState(),
	}
}

// Backoff returns the wait that follows a failed attempt.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := BaseDelay
	for i := 1; i < attempt && delay < MaxDelay; i++ {
		delay *= 2
	}
	return min(delay, MaxDelay)
}

// Generate runs one logical generation to completion. Invalid requests and
// calls made while another generation is active are rejected without
// touching the client.
func (c *Controller) Generate(ctx context.Context, req domain.GenerationRequest) Outcome {
	if err := req.Validate(); err != nil {
		return rejected(err)
	}
	if c.client == nil {
		return rejected(ErrNoClient)
	}
	req.Prompt = domain.NormalizePrompt(req.Prompt)

	genCtx, ok := c.begin(ctx)
	if !ok {
		return rejected(domain.ErrBusy)
	}
	defer c.finish()

	log := c.logger.With().Str("style", string(req.Style)).Logger()

	for attempt := 1; ; attempt++ {
		if genCtx.Err() != nil {
			log.Info().Int("attempt", attempt).Msg("generation cancelled before attempt")
			c.notifyCancelled()
			return cancelled()
		}
		c.setAttempt(attempt)
		c.notify(func(o Observer) { o.AttemptStarted(attempt) })
		log.Debug().Int("attempt", attempt).Msg("generation attempt started")

		result, err := c.call(genCtx, req)
		if genCtx.Err() != nil || domain.IsAborted(err) {
			log.Info().Int("attempt", attempt).Msg("generation cancelled")
			c.notifyCancelled()
			return cancelled()
		}
		if err == nil {
			if c.history != nil {
				c.history.Record(context.WithoutCancel(genCtx), result)
			}
			log.Info().Int("attempt", attempt).Str("id", result.ID).Msg("generation succeeded")
			c.notify(func(o Observer) { o.Succeeded(result) })
			return succeeded(result)
		}
		if domain.IsOverloaded(err) && attempt < MaxAttempts {
			delay := Backoff(attempt)
			c.setRetry(attempt)
			log.Warn().Int("attempt", attempt).Dur("delay", delay).Msg("model overloaded, retrying")
			c.notify(func(o Observer) { o.RetryScheduled(attempt+1, delay) })
			if err := c.sleeper.Sleep(genCtx, delay); err != nil || genCtx.Err() != nil {
				// Observers are not told about a cancellation that lands
				// during the wait.
				log.Info().Int("attempt", attempt).Msg("generation cancelled during backoff")
				return cancelled()
			}
			continue
		}
		message := domain.FailureMessage(err)
		log.Error().Err(err).Int("attempt", attempt).Msg("generation failed")
		c.notify(func(o Observer) { o.Failed(message) })
		return failed(message, err)
	}
}

// Cancel signals the active generation, if any. It reports whether a
// generation was running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	c.state.Cancelled = true
	c.cancel()
	return true
}

// State returns a snapshot of the retry bookkeeping.
func (c *Controller) State() domain.RetryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) begin(ctx context.Context) (context.Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Active {
		return nil, false
	}
	genCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = domain.InitialRetryState()
	c.state.Active = true
	return genCtx, true
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = domain.InitialRetryState()
}

func (c *Controller) setAttempt(attempt int) {
	c.mu.Lock()
	c.state.AttemptNumber = attempt
	c.mu.Unlock()
}

func (c *Controller) setRetry(attempt int) {
	c.mu.Lock()
	c.state.RetryCount = attempt
	c.state.AttemptNumber = attempt + 1
	c.mu.Unlock()
}

type callResult struct {
	result domain.GenerationResult
	err    error
}

// call runs one attempt. A client that ignores ctx is abandoned once ctx is
// done; its late result lands in the buffered channel and is dropped.
func (c *Controller) call(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	done := make(chan callResult, 1)
	go func() {
		res, err := c.client.Generate(ctx, req)
		done <- callResult{result: res, err: err}
	}()
	select {
	case <-ctx.Done():
		return domain.GenerationResult{}, ctx.Err()
	case r := <-done:
		if r.err == nil && ctx.Err() != nil {
			return domain.GenerationResult{}, ctx.Err()
		}
		return r.result, r.err
	}
}

func (c *Controller) notify(fn func(Observer)) {
	if c.observer != nil {
		fn(c.observer)
	}
}

func (c *Controller) notifyCancelled() {
	c.notify(func(o Observer) { o.Cancelled() })
}
