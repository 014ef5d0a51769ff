package persistence

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&http.Client{Timeout: time.Second}, WithBaseURL(serverURL))
}

func TestNextReturnsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(chimiddleware.RequestIDHeader); got != "hash-req-1" {
			t.Errorf("expected forwarded request id, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": 7}`))
	}))
	defer srv.Close()

	ctx := context.WithValue(context.Background(), chimiddleware.RequestIDKey, "hash-req-1")
	v, err := newTestClient(srv.URL).Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
}

func TestNextForwardsTraceparent(t *testing.T) {
	const traceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(applog.TraceparentHeader)
		_, _ = w.Write([]byte(`{"data": 1}`))
	}))
	defer srv.Close()

	// RequestLogger is what stores an inbound traceparent for outbound calls.
	var ctx context.Context
	applog.RequestLogger()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	})).ServeHTTP(httptest.NewRecorder(), func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(applog.TraceparentHeader, traceparent)
		return req
	}())

	if _, err := newTestClient(srv.URL).Next(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != traceparent {
		t.Fatalf("expected traceparent %q forwarded, got %q", traceparent, got)
	}
}

func TestNextWithoutTraceparent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tp := r.Header.Get(applog.TraceparentHeader); tp != "" {
			t.Errorf("expected no traceparent, got %q", tp)
		}
		_, _ = w.Write([]byte(`{"data": 1}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Next(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Next(context.Background())
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("expected ErrUpstreamStatus, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if ue.Kind != UpstreamErrorKindStatus || ue.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
	if ue.Reason != "Service Unavailable" {
		t.Fatalf("expected reason Service Unavailable, got %q", ue.Reason)
	}
}

func TestNextMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "Hello, World!\n"},
		{"missing data", `{"value": 3}`},
		{"negative", `{"data": -1}`},
		{"fractional", `{"data": 1.5}`},
		{"string", `{"data": "7"}`},
		{"null", `{"data": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Next(context.Background())
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var ue *UpstreamError
			if !errors.As(err, &ue) || ue.Cause() == nil {
				t.Fatalf("expected malformed error with cause, got %+v", err)
			}
		})
	}
}

func TestNextUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = NewClient(nil, WithAddr(addr)).Next(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Timeout {
		t.Fatalf("expected non-timeout unavailable error, got %+v", ue)
	}
}

func TestNextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(&http.Client{Timeout: 50 * time.Millisecond}, WithBaseURL(srv.URL))
	_, err := client.Next(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || !ue.Timeout {
		t.Fatalf("expected timeout flag, got %+v", ue)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:8081", "http://localhost:8081"},
		{" counter:9000/ ", "http://counter:9000"},
		{"http://counter:9000", "http://counter:9000"},
		{"https://counter.example.com/", "https://counter.example.com"},
	}
	for _, tt := range tests {
		if got := BaseURL(tt.in); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil)
	if c.baseURL != "http://localhost:8081" {
		t.Fatalf("unexpected default base URL %q", c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTimeout, c.httpClient.Timeout)
	}
}
