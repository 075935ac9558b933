package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
)

// ErrCredentialsNotConfigured means the owner+brand credential mapping
// could not be resolved. Non-retryable without operator intervention.
var ErrCredentialsNotConfigured = errors.New("platform credentials not configured")

// ProtocolError is an explicit rejection by the remote platform at a
// named protocol step. A fresh attempt gets a fresh session, so these
// are retryable through the retry operation.
type ProtocolError struct {
	Platform models.Platform
	Step     string
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Platform, e.Step, e.Message)
}

// TimeoutError means the processing poll exhausted its deadline without
// a terminal answer. Distinguished from a rejection because it usually
// indicates transient remote overload and is the most retry-worthy class.
type TimeoutError struct {
	Platform models.Platform
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: media processing did not finish within %s", e.Platform, e.Waited)
}

// PlatformClient drives one destination's upload protocol for a single
// artifact: open a session, hand over the media locator, wait for remote
// processing, finalize. Publish returns the remote post identifier.
type PlatformClient interface {
	Platform() models.Platform
	Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error)
}

type pollState int

const (
	pollPending pollState = iota
	pollReady
	pollFailed
)

// poller runs the PROCESSING step of the upload state machine: check on
// a fixed interval up to a bounded number of attempts. The sleep hook is
// injectable so timeout behavior is testable without wall-clock delay.
type poller struct {
	platform    models.Platform
	interval    time.Duration
	maxAttempts int
	sleep       func(time.Duration)
}

func newPoller(platform models.Platform) *poller {
	return &poller{
		platform:    platform,
		interval:    5 * time.Second,
		maxAttempts: 36, // 3 minutes overall
		sleep:       time.Sleep,
	}
}

// wait calls check until it reports ready, reports failure, the context
// ends, or attempts run out. Unknown/intermediate states keep polling.
func (p *poller) wait(ctx context.Context, check func(ctx context.Context) (pollState, string, error)) error {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			p.sleep(p.interval)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		state, detail, err := check(ctx)
		if err != nil {
			return err
		}

		switch state {
		case pollReady:
			return nil
		case pollFailed:
			return &ProtocolError{Platform: p.platform, Step: "processing", Message: detail}
		}
	}

	return &TimeoutError{Platform: p.platform, Waited: time.Duration(p.maxAttempts) * p.interval}
}

// postJSON issues a JSON POST and decodes the response body into out.
// Non-2xx statuses are surfaced as protocol errors with the body detail
// left to the caller's decoded error field when present.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out interface{}) (int, error) {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("error marshalling payload: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("error parsing response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("error parsing response: %w", err)
	}

	return resp.StatusCode, nil
}
