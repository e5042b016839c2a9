package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	// Timeout bounds each attempt. Zero means no per-attempt deadline.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	Delay      time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Timeout:    15 * time.Second,
		MaxRetries: 1,
		Delay:      500 * time.Millisecond,
	}
}

// Do runs operation under a per-attempt timeout and retries it while the
// failure is transient. The parent context always wins: once it is done no
// further attempt is made.
func Do(ctx context.Context, config RetryConfig, logger *logrus.Logger, name string, operation func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = runAttempt(ctx, config.Timeout, operation)
		if err == nil {
			return nil
		}

		if !IsTransient(err) || ctx.Err() != nil {
			return err
		}

		if attempt == config.MaxRetries {
			if config.MaxRetries == 0 {
				return err
			}
			return fmt.Errorf("%s failed after %d retries: %w", name, config.MaxRetries, err)
		}

		logger.WithFields(logrus.Fields{
			"stage":   name,
			"attempt": attempt + 1,
			"delay":   config.Delay,
			"error":   err.Error(),
		}).Warn("Retrying upstream operation")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(config.Delay):
		}
	}

	return err
}

func runAttempt(ctx context.Context, timeout time.Duration, operation func(ctx context.Context) error) error {
	if timeout <= 0 {
		return operation(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return operation(attemptCtx)
}
