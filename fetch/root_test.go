// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"asbottleneck/common/helpers"
	"asbottleneck/common/reporter"
)

func gzipped(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("Write() error:\n%+v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Close() error:\n%+v", err)
	}
	return buf.Bytes()
}

func TestOpenFile(t *testing.T) {
	payload := []byte("not really an MRT dump, but bytes nonetheless")
	for _, compress := range []bool{false, true} {
		data := payload
		if compress {
			data = gzipped(t, payload)
		}
		path := filepath.Join(t.TempDir(), "dump")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("WriteFile() error:\n%+v", err)
		}

		r := reporter.NewMock(t)
		c, err := New(r, Configuration{Path: path, Timeout: time.Minute})
		if err != nil {
			t.Fatalf("New() error:\n%+v", err)
		}
		stream, err := c.Open(context.Background())
		if err != nil {
			t.Fatalf("Open() error:\n%+v", err)
		}
		got, err := io.ReadAll(stream)
		if err != nil {
			t.Fatalf("ReadAll() error:\n%+v", err)
		}
		stream.Close()
		if diff := helpers.Diff(got, payload); diff != "" {
			t.Fatalf("Open() content (compress: %v) (-got, +want):\n%s", compress, diff)
		}
	}
}

func TestOpenURL(t *testing.T) {
	payload := []byte("fetched bytes")
	failures := 2
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if failures > 0 {
			failures--
			http.Error(w, "try again later", http.StatusServiceUnavailable)
			return
		}
		w.Write(gzipped(t, payload))
	}))
	defer server.Close()

	r := reporter.NewMock(t)
	c, err := New(r, Configuration{URL: server.URL, Timeout: time.Minute, Retries: 3})
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	stream, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error:\n%+v", err)
	}
	got, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("ReadAll() error:\n%+v", err)
	}
	stream.Close()
	if diff := helpers.Diff(got, payload); diff != "" {
		t.Fatalf("Open() content (-got, +want):\n%s", diff)
	}

	gotMetrics := r.GetMetrics("asbottleneck_fetch_", "attempts", "failures")
	expectedMetrics := map[string]string{
		`attempts_total{source="http"}`: "3",
		`failures_total{source="http"}`: "2",
	}
	if diff := helpers.Diff(gotMetrics, expectedMetrics); diff != "" {
		t.Fatalf("Metrics (-got, +want):\n%s", diff)
	}
}

func TestOpenURLExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := reporter.NewMock(t)
	c, err := New(r, Configuration{URL: server.URL, Timeout: time.Minute, Retries: 1})
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	if _, err := c.Open(context.Background()); err == nil {
		t.Fatal("Open() should fail once retries are exhausted")
	}
}

func TestNewWithAmbiguousSource(t *testing.T) {
	r := reporter.NewMock(t)
	if _, err := New(r, Configuration{URL: "https://example.net/dump.gz", Path: "/dump", Timeout: time.Minute}); err == nil {
		t.Fatal("New() should reject both URL and path being set")
	}
	if _, err := New(r, Configuration{Timeout: time.Minute}); err == nil {
		t.Fatal("New() should reject neither URL nor path being set")
	}
}
