package httpcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.Handler) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	SetDomainDelay(u.Host, 0)
	return server, &hits
}

func mustRequest(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestFetchURL_CacheHit(t *testing.T) {
	server, hits := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>ok</html>")
	}))

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}

	for i := range 3 {
		body, err := FetchURL(ctx, cache, client, mustRequest(t, server.URL+"/page"), nil)
		if err != nil {
			t.Fatalf("FetchURL() call %d error = %v", i+1, err)
		}
		if string(body) != "<html>ok</html>" {
			t.Errorf("FetchURL() call %d body = %q", i+1, body)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (responses should come from cache)", got)
	}
}

func TestFetchURL_NilCache(t *testing.T) {
	server, hits := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	}))

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}

	for range 2 {
		if _, err := FetchURL(ctx, nil, client, mustRequest(t, server.URL), nil); err != nil {
			t.Fatalf("FetchURL() error = %v", err)
		}
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (nil cache must not dedupe)", got)
	}
}

func TestFetchURL_NullCache(t *testing.T) {
	server, hits := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>ok</html>")
	}))

	cache := NewNull()
	if got := cache.TTL(); got != 0 {
		t.Errorf("TTL() = %v, want 0", got)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}

	body, err := FetchURL(ctx, cache, client, mustRequest(t, server.URL+"/page"), nil)
	if err != nil {
		t.Fatalf("FetchURL() error = %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("FetchURL() body = %q", body)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestFetchURL_NegativeCaching(t *testing.T) {
	server, hits := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}

	for i := range 2 {
		_, err := FetchURL(ctx, cache, client, mustRequest(t, server.URL+"/missing"), nil)
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("FetchURL() call %d error = %v, want *HTTPError", i+1, err)
		}
		if httpErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (error should be served from cache)", got)
	}
}

func TestFetchURLWithValidator_SkipsCaching(t *testing.T) {
	server, hits := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "truncated")
	}))

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}
	reject := func([]byte) bool { return false }

	for i := range 2 {
		body, err := FetchURLWithValidator(ctx, cache, client, mustRequest(t, server.URL), nil, reject)
		if err != nil {
			t.Fatalf("FetchURLWithValidator() call %d error = %v", i+1, err)
		}
		if string(body) != "truncated" {
			t.Errorf("body = %q, want original response despite validation failure", body)
		}
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (rejected responses must not be cached)", got)
	}
}

func TestURLToKey(t *testing.T) {
	a := URLToKey("https://getquicker.net/User/Actions/113342-")
	b := URLToKey("https://getquicker.net/User/Actions/113342-")
	c := URLToKey("https://getquicker.net/User/Actions/113342-?p=2")

	if a != b {
		t.Errorf("URLToKey not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Error("URLToKey collision for distinct URLs")
	}
	if len(a) != 64 {
		t.Errorf("URLToKey length = %d, want 64 hex chars", len(a))
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &HTTPError{StatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &HTTPError{StatusCode: http.StatusBadGateway}, true},
		{"not found", &HTTPError{StatusCode: http.StatusNotFound}, false},
		{"forbidden", &HTTPError{StatusCode: http.StatusForbidden}, false},
		{"network error", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCacheStats(t *testing.T) {
	ResetStats()

	server, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	}))

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Second}
	for range 3 {
		if _, err := FetchURL(ctx, cache, client, mustRequest(t, server.URL), nil); err != nil {
			t.Fatalf("FetchURL() error = %v", err)
		}
	}

	stats := CacheStats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
}
