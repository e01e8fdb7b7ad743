package generation

import (
	"context"
	"time"

	"studio/internal/domain"
)

// OutcomeKind is the terminal state of a logical generation.
type OutcomeKind string

const (
	Succeeded OutcomeKind = "succeeded"
	Cancelled OutcomeKind = "cancelled"
	Failed    OutcomeKind = "failed"
	// Rejected means the client was never called: invalid input or busy.
	Rejected OutcomeKind = "rejected"
)

// Outcome is what callers observe of a logical generation. Result is set for
// Succeeded, Message for Failed and Err for Failed and Rejected.
type Outcome struct {
	Kind    OutcomeKind
	Result  domain.GenerationResult
	Message string
	Err     error
}

func succeeded(result domain.GenerationResult) Outcome {
	return Outcome{Kind: Succeeded, Result: result}
}

func cancelled() Outcome {
	return Outcome{Kind: Cancelled}
}

func failed(message string, err error) Outcome {
	return Outcome{Kind: Failed, Message: message, Err: err}
}

func rejected(err error) Outcome {
	return Outcome{Kind: Rejected, Message: err.Error(), Err: err}
}

// Observer receives progress events. Implementations must not block.
type Observer interface {
	AttemptStarted(attempt int)
	RetryScheduled(nextAttempt int, delay time.Duration)
	Succeeded(result domain.GenerationResult)
	Failed(message string)
	Cancelled()
}

// Sleeper performs the backoff wait. Sleep returns early with ctx.Err() when
// ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on a real timer.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
