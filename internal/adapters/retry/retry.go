// Package retry wraps an http.Client with bounded retries for upstream APIs.
package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 500 * time.Millisecond
)

// Classifier decides whether an attempt should be retried and how long the
// upstream asked us to wait.
type Classifier func(resp *http.Response, err error) (time.Duration, bool)

// Policy configures a Doer. Zero values fall back to the defaults.
type Policy struct {
	// Component prefixes log lines and errors, e.g. "spotify adapter".
	Component   string
	MaxAttempts int
	Backoff     time.Duration
	// Constant disables exponential growth of Backoff.
	Constant bool
	RetryOn  Classifier
}

// ExhaustedError is returned when every attempt was retryable. Status is
// the last HTTP status seen, or 0 when the last attempt failed in transport.
type ExhaustedError struct {
	Component string
	Attempts  int
	Status    int
	Err       error
}

func (e *ExhaustedError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: request failed after %d attempts: %v", e.Component, e.Attempts, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: request failed after %d attempts: status %d", e.Component, e.Attempts, e.Status)
	default:
		return fmt.Sprintf("%s: request failed after %d attempts", e.Component, e.Attempts)
	}
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Doer sends requests with retries.
type Doer struct {
	client *http.Client
	policy Policy
}

// New constructs a Doer.
func New(client *http.Client, policy Policy) *Doer {
	if client == nil {
		client = http.DefaultClient
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.Backoff <= 0 {
		policy.Backoff = DefaultBackoff
	}
	if policy.RetryOn == nil {
		policy.RetryOn = TransientFailure
	}
	if policy.Component == "" {
		policy.Component = "retry"
	}
	return &Doer{client: client, policy: policy}
}

// Do sends req until it succeeds, fails with a non-retryable outcome, or
// the attempts run out. The request body is buffered so it can be resent.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	component := d.policy.Component
	maxAttempts := d.policy.MaxAttempts

	if req.Body != nil && req.GetBody == nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: read request body: %w", component, err)
		}
		_ = req.Body.Close()
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	ctx := req.Context()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", component, err)
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("%s: reset request body: %w", component, err)
			}
			req.Body = body
		}

		resp, err := d.client.Do(req)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", component, err)
		}
		retryAfter, retry := d.policy.RetryOn(resp, err)
		if !retry {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			_ = resp.Body.Close()
		}
		log.Warn().
			Err(err).
			Int("status", status).
			Int("attempt", attempt+1).
			Int("max_attempts", maxAttempts).
			Msgf("%s: retryable response", component)

		if attempt == maxAttempts-1 {
			return nil, &ExhaustedError{Component: component, Attempts: maxAttempts, Status: status, Err: err}
		}

		backoff := d.policy.Backoff
		if !d.policy.Constant {
			backoff *= time.Duration(1 << attempt)
		}
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := SleepContext(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", component, err)
		}
	}

	return nil, &ExhaustedError{Component: component, Attempts: maxAttempts}
}

// TransientFailure retries transport errors, 429 and 5xx, honoring Retry-After.
func TransientFailure(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return ParseRetryAfter(resp), true
	}

	return 0, false
}

// OnStatus retries only the given statuses. Transport errors are returned as is.
func OnStatus(statuses ...int) Classifier {
	return func(resp *http.Response, err error) (time.Duration, bool) {
		if err != nil || resp == nil {
			return 0, false
		}
		for _, s := range statuses {
			if resp.StatusCode == s {
				return 0, true
			}
		}
		return 0, false
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}

// SleepContext waits for delay or until ctx is done.
func SleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTimeout reports whether err is a client or context deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
