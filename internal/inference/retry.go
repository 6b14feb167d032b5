package inference

import (
	"context"
	"strings"
	"time"
)

// RetryPolicy controls WithRetry. MaxAttempts <= 1 disables retrying.
type RetryPolicy struct {
	MaxAttempts int

	// RateLimitWaits and ServerErrorWaits are indexed by attempt; the last
	// value is reused when there are more attempts than waits.
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

// DefaultRetryPolicy makes exactly one call.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      1,
		RateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second},
		ServerErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second},
	}
}

// WithRetry wraps s so that rate-limit and server errors are retried per
// policy. Other errors return immediately.
func WithRetry(s Service, policy RetryPolicy) Service {
	if policy.MaxAttempts <= 1 {
		return s
	}
	return ServiceFunc(func(ctx context.Context, prompt string) (string, error) {
		var lastErr error
		for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
			out, err := s.SubmitPrompt(ctx, prompt)
			if err == nil {
				return out, nil
			}
			lastErr = err

			var waits []time.Duration
			switch {
			case isRateLimitError(err):
				waits = policy.RateLimitWaits
			case isServerError(err):
				waits = policy.ServerErrorWaits
			default:
				return "", err
			}
			if attempt == policy.MaxAttempts-1 {
				break
			}
			if err := sleepCtx(ctx, waitFor(waits, attempt)); err != nil {
				return "", err
			}
		}
		return "", lastErr
	})
}

func waitFor(waits []time.Duration, attempt int) time.Duration {
	if len(waits) == 0 {
		return 0
	}
	if attempt < len(waits) {
		return waits[attempt]
	}
	return waits[len(waits)-1]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource_exhausted")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
