// Package wait provides bounded polling for conditions on a live page.
package wait

import (
	"context"
	"fmt"
	"time"

	"ui_automation/domain/entities"
)

// Policy bounds a wait: at most Retries attempts, Interval apart.
type Policy struct {
	Retries  int
	Interval time.Duration
}

// DefaultPolicy is used when no policy is configured.
var DefaultPolicy = Policy{Retries: 10, Interval: 500 * time.Millisecond}

// Condition reports whether the awaited state has been reached.
type Condition func(ctx context.Context) (bool, error)

// Until polls cond until it returns true. When the attempts are used up it
// returns ErrWaitExhausted wrapping the last condition error, if any.
func Until(ctx context.Context, policy Policy, cond Condition) error {
	if policy.Retries < 1 {
		policy.Retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Retries; attempt++ {
		ok, err := cond(ctx)
		if err == nil && ok {
			return nil
		}
		lastErr = err

		if attempt == policy.Retries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait canceled: %w", ctx.Err())
		case <-time.After(policy.Interval):
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w (%d attempts, %s apart): %w", entities.ErrWaitExhausted, policy.Retries, policy.Interval, lastErr)
	}
	return fmt.Errorf("%w (%d attempts, %s apart)", entities.ErrWaitExhausted, policy.Retries, policy.Interval)
}
