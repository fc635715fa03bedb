package httpclient

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// BackoffMultiplier scales the wait after every further failure.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		Delay:             1 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Backoff returns the wait after the given failed attempt (1-based):
// Delay * BackoffMultiplier^(attempt-1).
func (r RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(r.Delay) * math.Pow(r.BackoffMultiplier, float64(attempt-1)))
}

func (r RetryConfig) normalized() RetryConfig {
	if r.MaxAttempts < 1 {
		r.MaxAttempts = 1
	}
	if r.Delay < 0 {
		r.Delay = 0
	}
	if r.BackoffMultiplier < 1 {
		r.BackoffMultiplier = 1
	}
	return r
}

// errorClassOf extracts the classification carried by err.
// Anything that is not an *UpstreamError failed before a response arrived.
func errorClassOf(err error) ErrorClass {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Class
	}
	return ErrorClassNetwork
}

// retryWithBackoff runs fn until it succeeds or config.MaxAttempts is reached,
// sleeping config.Backoff(attempt) between attempts.
func retryWithBackoff(config RetryConfig, sleep func(time.Duration), logger zerolog.Logger, fn func(attempt int) error) error {
	config = config.normalized()

	var lastErr error
	var errorClass ErrorClass

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("error_class", string(errorClass)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errorClass = errorClassOf(err)

		if !shouldRetry(errorClass) {
			return lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		backoff := config.Backoff(attempt)
		upstreamRetriesTotal.WithLabelValues(string(errorClass)).Inc()
		upstreamRetryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(backoff.Seconds())

		logger.Debug().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Int("max_attempts", config.MaxAttempts).
			Dur("backoff", backoff).
			Msg("Retrying request after backoff")

		sleep(backoff)
	}

	upstreamRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
	logger.Warn().
		Err(lastErr).
		Str("error_class", string(errorClass)).
		Int("max_attempts", config.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, config.MaxAttempts, lastErr)
}
