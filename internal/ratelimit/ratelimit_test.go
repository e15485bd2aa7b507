package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Requests <= 0 {
		t.Error("Requests should be positive")
	}
	if cfg.Window <= 0 {
		t.Error("Window should be positive")
	}
	if cfg.Strategy == "" {
		t.Error("Strategy should not be empty")
	}
}

func TestMemoryLimiterAllow(t *testing.T) {
	cfg := &Config{Requests: 5, Window: time.Second, Strategy: "sliding_window", CleanupInterval: time.Minute}
	limiter := NewMemoryLimiter(cfg)
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "key")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("6th request should be denied")
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	cfg := &Config{Requests: 2, Window: time.Second, Strategy: "sliding_window", CleanupInterval: time.Minute}
	limiter := NewMemoryLimiter(cfg)
	defer limiter.Close()

	ctx := context.Background()
	limiter.Allow(ctx, "key")
	limiter.Allow(ctx, "key")

	if allowed, _ := limiter.Allow(ctx, "key"); allowed {
		t.Error("should be rate limited")
	}

	limiter.Reset(ctx, "key")

	if allowed, _ := limiter.Allow(ctx, "key"); !allowed {
		t.Error("should be allowed after reset")
	}
}

func TestMemoryLimiterClosedRejectsAllow(t *testing.T) {
	limiter := NewMemoryLimiter(nil)
	if err := limiter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := limiter.Allow(context.Background(), "key"); err != ErrLimiterClosed {
		t.Errorf("Allow after close = %v, want ErrLimiterClosed", err)
	}
}

func TestIPKeyExtractorPrefersForwardedHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	r.Header.Set("X-Forwarded-For", "192.168.1.1")
	r.RemoteAddr = "10.0.0.1:5555"

	if key := IPKeyExtractor(r); key != "192.168.1.1" {
		t.Errorf("key = %v, want 192.168.1.1", key)
	}
}

func TestIPKeyExtractorFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	r.RemoteAddr = "10.0.0.1:5555"

	if key := IPKeyExtractor(r); key != "10.0.0.1:5555" {
		t.Errorf("key = %v, want 10.0.0.1:5555", key)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	lim := NewMemoryLimiter(&Config{Requests: 1, Window: time.Minute, Strategy: "sliding_window", CleanupInterval: time.Minute})
	defer lim.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(lim, PathKeyExtractor)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec2.Code)
	}
}
