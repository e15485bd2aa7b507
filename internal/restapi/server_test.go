package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plcgateway/internal/ratelimit"
	"plcgateway/internal/reconnect"
	"plcgateway/internal/tagstore"
)

func TestCORSAllowsWildcardOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSHandlesPreflight(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}, MaxAge: 600}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://allowed.example"}, AllowedMethods: []string{"GET"}}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerMuxAppliesRateLimiter(t *testing.T) {
	store := tagstore.New()
	s := New(Config{CORS: CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}}},
		store, nil, map[string]*reconnect.StateMachine{}, func() int64 { return 0 },
		func() bool { return true }, nil)

	cfg := ratelimit.DefaultConfig()
	cfg.Requests = 1
	limiter, err := ratelimit.New(cfg)
	require.NoError(t, err)
	defer limiter.Close()

	s.WithRateLimiter(limiter)
	handler := s.mux()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hmi/ready", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req)
	assert.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestServerMuxServesSwaggerUI(t *testing.T) {
	store := tagstore.New()
	s := New(Config{CORS: CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}}},
		store, nil, map[string]*reconnect.StateMachine{}, func() int64 { return 0 },
		func() bool { return true }, nil)

	req := httptest.NewRequest(http.MethodGet, "/swagger/", nil)
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
