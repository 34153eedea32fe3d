package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/adigiz/leadgen/internal/model"
)

// retryPolicy controls backoff for transient renderer failures.
type retryPolicy struct {
	attempts       int // total attempts including the first
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitterFraction float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts:       3,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.25,
	}
}

// statusError is a non-200 renderer response.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("collector: renderer returned %d for %s", e.code, e.url)
}

// isTransient reports whether a fetch failure is worth retrying: renderer
// overload or restart (5xx, 429) and transport-level failures. Client errors
// and malformed pages are not.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == 429
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// fetchWithRetry runs one page fetch under the retry policy. Context
// cancellation stops retries immediately.
func fetchWithRetry(
	ctx context.Context,
	p retryPolicy,
	fn func(ctx context.Context) ([]model.RawBusinessRecord, error),
) ([]model.RawBusinessRecord, error) {
	var lastErr error
	for attempt := 0; attempt < p.attempts; attempt++ {
		records, err := fn(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTransient(err) || attempt >= p.attempts-1 {
			break
		}

		zap.L().Warn("collector: retrying page fetch",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff(attempt, p))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func backoff(attempt int, p retryPolicy) time.Duration {
	delay := float64(p.initialBackoff) * math.Pow(p.multiplier, float64(attempt))
	if delay > float64(p.maxBackoff) {
		delay = float64(p.maxBackoff)
	}
	if p.jitterFraction > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.jitterFraction
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
