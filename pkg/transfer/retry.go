package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
)

// statusCoder is implemented by errors carrying an HTTP status
// (zoho.APIError does)
type statusCoder interface {
	HTTPStatus() int
}

// httpStatus extracts an HTTP status from an error chain
func httpStatus(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus(), true
	}
	return 0, false
}

// Policy retries an operation on transient remote failures with
// exponential backoff. An error is transient iff it carries an HTTP
// status listed in RetryableStatuses; everything else, including
// errors with no status at all, is permanent and propagates
// immediately.
type Policy struct {
	// MaxAttempts bounds invocations; attempt 1 is the first try
	MaxAttempts int

	// InitialDelay is the wait before the second attempt
	InitialDelay time.Duration

	// MaxDelay caps the backoff
	MaxDelay time.Duration

	// Multiplier grows the delay after each retryable failure
	Multiplier float64

	// RetryableStatuses lists the HTTP statuses worth retrying
	RetryableStatuses map[int]bool

	// Logger records retry attempts; nil disables logging
	Logger logging.Logger

	// Sleep waits between attempts; nil uses a context-aware real
	// sleep. Tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryableStatuses returns the standard transient set: rate
// limiting and server-side errors
func DefaultRetryableStatuses() map[int]bool {
	return map[int]bool{
		429: true,
		500: true,
		502: true,
		503: true,
		504: true,
	}
}

// DefaultPolicy returns the stock policy: 3 attempts, 1s initial delay
// doubling up to 60s
func DefaultPolicy(logger logging.Logger) Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RetryableStatuses: DefaultRetryableStatuses(),
		Logger:            logger,
	}
}

// Do invokes op until it succeeds, fails permanently, or attempts are
// exhausted. On exhaustion the last error is returned verbatim.
func (p Policy) Do(ctx context.Context, name string, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		status, ok := httpStatus(err)
		if !ok || !p.RetryableStatuses[status] {
			// Permanent: fail fast, no delay
			return err
		}

		if attempt >= attempts {
			return err
		}

		if p.Logger != nil {
			p.Logger.Warn(ctx, "transient failure, retrying", logging.Fields{
				"operation": name,
				"status":    status,
				"attempt":   attempt,
				"max":       attempts,
				"delay":     delay.String(),
			})
		}

		if err := p.sleep(ctx, delay); err != nil {
			return err
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
