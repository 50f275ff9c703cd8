// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package fetch provides the MRT snapshot as a byte stream, either
// downloaded from a route collector or read from a local file.
// Gzipped payloads are decompressed transparently.
package fetch

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"asbottleneck/common/reporter"
)

// Component represents the fetch component.
type Component struct {
	r       *reporter.Reporter
	config  Configuration
	client  *http.Client
	metrics metrics

	// Replaced in tests to avoid waiting between retries.
	newBackOff func() backoff.BackOff
}

// New creates a new fetch component from its configuration.
func New(r *reporter.Reporter, configuration Configuration) (*Component, error) {
	if (configuration.URL == "") == (configuration.Path == "") {
		return nil, fmt.Errorf("exactly one of URL and path should be configured")
	}
	c := Component{
		r:      r,
		config: configuration,
		client: &http.Client{
			Timeout: configuration.Timeout,
		},
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	c.initMetrics()
	return &c, nil
}

// Open returns a stream of MRT bytes for the configured source. The
// caller owns the returned reader and should close it.
func (c *Component) Open(ctx context.Context) (io.ReadCloser, error) {
	if c.config.Path != "" {
		return c.openFile()
	}
	return c.openURL(ctx)
}

func (c *Component) openFile() (io.ReadCloser, error) {
	c.metrics.attempts.WithLabelValues("file").Inc()
	f, err := os.Open(c.config.Path)
	if err != nil {
		c.metrics.failures.WithLabelValues("file").Inc()
		return nil, fmt.Errorf("cannot open %q: %w", c.config.Path, err)
	}
	stream, err := c.decompressed(f, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot read %q: %w", c.config.Path, err)
	}
	c.r.Debug().Str("path", c.config.Path).Msg("snapshot opened")
	return stream, nil
}

func (c *Component) openURL(ctx context.Context) (io.ReadCloser, error) {
	var resp *http.Response
	operation := func() error {
		c.metrics.attempts.WithLabelValues("http").Inc()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.client.Do(req)
		if err != nil {
			c.metrics.failures.WithLabelValues("http").Inc()
			return err
		}
		if r.StatusCode != http.StatusOK {
			r.Body.Close()
			c.metrics.failures.WithLabelValues("http").Inc()
			return fmt.Errorf("unexpected status %s", r.Status)
		}
		resp = r
		return nil
	}
	retryable := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackOff(), uint64(c.config.Retries)), ctx)
	notify := func(err error, _ time.Duration) {
		c.r.Warn().Err(err).Str("url", c.config.URL).Msg("snapshot download failed, retrying")
	}
	if err := backoff.RetryNotify(operation, retryable, notify); err != nil {
		return nil, fmt.Errorf("cannot fetch %q: %w", c.config.URL, err)
	}
	stream, err := c.decompressed(resp.Body, resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("cannot read %q: %w", c.config.URL, err)
	}
	c.r.Debug().Str("url", c.config.URL).Msg("snapshot download started")
	return stream, nil
}

// decompressed wraps a stream with a gzip reader when the payload
// looks gzipped, counting consumed bytes either way.
func (c *Component) decompressed(stream io.Reader, closer io.Closer) (io.ReadCloser, error) {
	counted := &countingReader{reader: stream, counter: c.metrics.bytes}
	buffered := bufio.NewReader(counted)
	magic, err := buffered.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	var out io.Reader = buffered
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, err
		}
		out = gz
	}
	return &readCloser{Reader: out, closer: closer}, nil
}

type countingReader struct {
	reader  io.Reader
	counter reporter.Counter
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.counter.Add(float64(n))
	return n, err
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error {
	return r.closer.Close()
}
