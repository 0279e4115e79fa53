package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
)

// RetryPolicy controls the exponential backoff applied to portal
// workflow attempts. The delay before attempt n+1 is
// BaseDelay * 2^(n-1), capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy mirrors the portal's observed flakiness: ten
// attempts, starting at one second and never waiting more than ten.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, BaseDelay: 1 * time.Second, MaxDelay: 10 * time.Second}
}

// Retry runs fn until it succeeds, fails permanently, or the policy is
// exhausted. fn owns its resources per attempt; nothing is shared
// between attempts. The last error is returned after exhaustion.
func Retry(ctx context.Context, logger *logrus.Logger, policy RetryPolicy, op string, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.WithFields(logrus.Fields{
					"operation": op,
					"attempt":   attempt,
				}).Info("Operation succeeded after retry")
			}
			return nil
		}

		if isPermanent(err) {
			logger.WithFields(logrus.Fields{
				"operation": op,
				"attempt":   attempt,
			}).WithError(err).Warn("Operation failed permanently, not retrying")
			return err
		}

		lastErr = err
		if attempt == policy.MaxAttempts {
			break
		}

		logger.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt,
			"delay":     delay.String(),
		}).WithError(err).Warn("Operation failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	logger.WithFields(logrus.Fields{
		"operation": op,
		"attempts":  policy.MaxAttempts,
	}).WithError(lastErr).Error("Operation exhausted all attempts")
	return lastErr
}

// isPermanent reports whether retrying can never help: the request
// itself is invalid, or the page parsed fine but no longer has the
// expected shape.
func isPermanent(err error) bool {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ee *models.ExtractionError
	if errors.As(err, &ee) {
		return true
	}
	return false
}
