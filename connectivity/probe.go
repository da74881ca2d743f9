// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package connectivity decides whether remote model downloads are possible
package connectivity

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultURL is the endpoint probed when none is given
const DefaultURL = "https://huggingface.co"

// Defaults for the probe, kept short since it runs on every startup
const (
	DefaultRetries = 2
	DefaultTimeout = 5 * time.Second
)

type prober struct {
	url     string
	client  *http.Client
	retries int
	timeout time.Duration
	wait    time.Duration
}

// Option configures Probe
type Option func(*prober)

// WithURL sets the probed endpoint
func WithURL(url string) Option {
	return func(p *prober) {
		p.url = url
	}
}

// WithClient sets the underlying HTTP client
func WithClient(client *http.Client) Option {
	return func(p *prober) {
		p.client = client
	}
}

// WithRetries sets how many times a failed attempt is retried
func WithRetries(n int) Option {
	return func(p *prober) {
		p.retries = n
	}
}

// WithTimeout bounds each individual attempt
func WithTimeout(d time.Duration) Option {
	return func(p *prober) {
		p.timeout = d
	}
}

// WithRetryWait sets the minimum wait between attempts, the maximum is eight times that
func WithRetryWait(d time.Duration) Option {
	return func(p *prober) {
		p.wait = d
	}
}

// Probe reports whether the endpoint answers a HEAD request
//
// Any response below 500 counts as reachable. Transport errors, 5xx
// responses that survive every retry and context cancellation all count as
// unreachable.
func Probe(ctx context.Context, opts ...Option) bool {
	p := &prober{
		url:     DefaultURL,
		retries: DefaultRetries,
		timeout: DefaultTimeout,
		wait:    250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}

	logger := log.FromContext(ctx)

	client := retryablehttp.NewClient()
	if p.client != nil {
		c := *p.client
		client.HTTPClient = &c
	}
	client.HTTPClient.Timeout = p.timeout
	client.RetryMax = p.retries
	client.RetryWaitMin = p.wait
	client.RetryWaitMax = 8 * p.wait
	client.Logger = leveledLogger{logger}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		logger.Debug("connectivity probe", "url", p.url, "err", err)
		return false
	}
	req.Header.Set("User-Agent", "invokepaths")

	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("connectivity probe", "url", p.url, "err", err)
		return false
	}
	defer resp.Body.Close()

	logger.Debug("connectivity probe", "url", p.url, "status", resp.Status)
	return resp.StatusCode < http.StatusInternalServerError
}

// leveledLogger adapts a charmbracelet logger to retryablehttp.LeveledLogger
type leveledLogger struct {
	l *log.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, keysAndValues ...any) { l.l.Debug(msg, keysAndValues...) }
func (l leveledLogger) Info(msg string, keysAndValues ...any) { l.l.Debug(msg, keysAndValues...) }
func (l leveledLogger) Debug(msg string, keysAndValues ...any) { l.l.Debug(msg, keysAndValues...) }
func (l leveledLogger) Warn(msg string, keysAndValues ...any) { l.l.Debug(msg, keysAndValues...) }
