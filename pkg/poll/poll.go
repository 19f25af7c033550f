// Package poll provides a bounded, fixed-interval retry loop for waiting on
// side effects that become observable asynchronously.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrExhausted is returned when every attempt ran without the condition holding
var ErrExhausted = errors.New("poll: attempts exhausted")

// Config controls a poll
type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Clock       clockwork.Clock // defaults to the real clock
}

// Validate checks the poll configuration
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("poll max attempts must be greater than 0")
	}
	return nil
}

// Until calls fn once per interval until it returns true, the attempt bound
// is reached or ctx is done. The first call happens one interval after Until
// is entered. It returns the number of attempts made.
func Until(ctx context.Context, cfg Config, fn func(attempt int) bool) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		timer := clock.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt - 1, ctx.Err()
		case <-timer.Chan():
		}

		if fn(attempt) {
			return attempt, nil
		}
	}

	return cfg.MaxAttempts, ErrExhausted
}
