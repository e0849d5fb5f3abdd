/*
Copyright 2025 Trident Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package remote asks a host application whether a string is a valid IRI.
//
// The host exposes a command endpoint that accepts a form-encoded "iri"
// parameter and answers with a JSON object such as {"good": true}. A Client
// performs exactly one request per candidate; it does not retry by default.
// Client.Validate has the shape of iri.ValidateFunc, so it plugs straight
// into an iri.Coercer, which treats every error as "invalid".
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single validation round trip.
	DefaultTimeout = 10 * time.Second
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 16
)

var (
	// ErrBadStatus is returned when the host answers with a non-2xx status.
	ErrBadStatus = errors.New("remote validator returned an unexpected status")
	// ErrMalformedResponse is returned when the response body cannot be understood.
	ErrMalformedResponse = errors.New("remote validator returned a malformed response")
	// ErrRejected is returned when the host reports a command error.
	ErrRejected = errors.New("remote validator reported an error")
)

// Client validates IRIs against a remote command endpoint.
type Client struct {
	endpoint string
	client   *retryablehttp.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of a single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.HTTPClient.Timeout = d }
}

// WithRetryMax sets how many times a failed request is retried. The default
// is zero: one request, no retry.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.client.RetryMax = n }
}

// WithRateLimit caps requests to perSecond with bursts of one. Zero or a
// negative value removes the cap.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client.HTTPClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client posting to endpoint, which must be an absolute
// http or https URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse remote endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("remote endpoint %q: missing host", endpoint)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = DefaultTimeout

	c := &Client{
		endpoint: u.String(),
		client:   rc,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	rc.Logger = c.logger
	return c, nil
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// response is the body returned by the host. Good is either a JSON boolean
// or the string "true" / "false".
type response struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Good    json.RawMessage `json:"good"`
}

// Validate asks the host whether candidate is a valid IRI. Any transport
// failure, unexpected status or malformed body is returned as an error
// together with false.
func (c *Client) Validate(ctx context.Context, candidate string) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("remote validation rate limit: %w", err)
		}
	}

	form := url.Values{"iri": {candidate}}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build remote validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("remote validation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read remote validation response: %w", err)
	}
	good, err := parseResponse(body)
	if err != nil {
		return false, err
	}
	c.logger.Debug("Remote IRI validation", slog.String("candidate", candidate), slog.Bool("good", good))
	return good, nil
}

// parseResponse extracts the verdict from a response body.
func parseResponse(body []byte) (bool, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if strings.EqualFold(r.Code, "error") {
		return false, fmt.Errorf("%w: %s", ErrRejected, r.Message)
	}
	if len(r.Good) == 0 || string(r.Good) == "null" {
		return false, fmt.Errorf("%w: missing \"good\" field", ErrMalformedResponse)
	}

	var b bool
	if err := json.Unmarshal(r.Good, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(r.Good, &s); err == nil {
		if v, perr := strconv.ParseBool(s); perr == nil {
			return v, nil
		}
	}
	return false, fmt.Errorf("%w: unexpected \"good\" value %s", ErrMalformedResponse, r.Good)
}
