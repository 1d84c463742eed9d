package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimitMiddlewareRejectsBurstOverflow(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rateLimitMiddleware(base, 0.5, 1)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "2" {
		t.Fatalf("expected Retry-After 2, got %q", second.Header().Get("Retry-After"))
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error body, got %q", ct)
	}
}

func TestRateLimitMiddlewareDisabledWhenZero(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rateLimitMiddleware(base, 0, 0)

	for range 10 {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", res.Code)
		}
	}
}

func TestBackpressureMiddlewareShedsWhenFull(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	slow := httptest.NewRecorder()
	go func() {
		defer wg.Done()
		handler.ServeHTTP(slow, httptest.NewRequest(http.MethodGet, "/v1/analyze", nil))
	}()
	<-entered

	shed := httptest.NewRecorder()
	handler.ServeHTTP(shed, httptest.NewRequest(http.MethodGet, "/v1/analyze", nil))
	if shed.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while slot is held, got %d", shed.Code)
	}

	close(release)
	wg.Wait()
	if slow.Code != http.StatusOK {
		t.Fatalf("expected slot holder to finish with 200, got %d", slow.Code)
	}

	after := httptest.NewRecorder()
	handler.ServeHTTP(after, httptest.NewRequest(http.MethodGet, "/v1/analyze", nil))
	if after.Code != http.StatusOK {
		t.Fatalf("expected slot to be released, got %d", after.Code)
	}
}
