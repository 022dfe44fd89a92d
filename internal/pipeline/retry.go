package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

// RetryPolicy is applied uniformly to every external-service call. Only
// retriable failures consume additional attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the policy used in production.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Do runs fn, retrying retriable failures with exponential backoff and jitter
// until the attempt ceiling. Non-retriable failures return immediately.
func (p RetryPolicy) Do(ctx context.Context, log *logrus.Entry, fn func() error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsRetriable(err) || attempt+1 >= p.MaxAttempts {
			return err
		}
		delay := withJitter(expBackoff(attempt, p.BaseDelay, p.MaxDelay))
		log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
		}).WithError(err).Warn("retriable failure, backing off")
		if !sleepWithContext(ctx, delay) {
			return ctx.Err()
		}
	}
	return err
}

// retriable is implemented by provider errors that know whether a retry is
// worthwhile.
type retriable interface {
	Retriable() bool
}

// IsRetriable classifies an error as transient (upstream 5xx, network errors,
// timeouts) or fatal (4xx, auth, quota, malformed payloads). Fatal errors
// must not consume additional provider calls.
func IsRetriable(err error) bool {
	var r retriable
	if errors.As(err, &r) {
		return r.Retriable()
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	var operr *net.OpError
	return errors.As(err, &operr)
}

func expBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base << attempt
	if d <= 0 {
		return max
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	// +/-20% jitter.
	j := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(d) * j)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
