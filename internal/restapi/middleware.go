package restapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"plcgateway/internal/logger"
	"plcgateway/internal/metrics"
)

// CORS builds a CORS-handling middleware from cfg, adapted from the
// gateway's ConnectRPC CORS middleware for a plain REST surface (no
// exposed-headers/gRPC-Web header list needed here).
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowedHeaders := prepareAllowedHeaders(cfg.AllowedHeaders)
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	maxAge := fmt.Sprintf("%d", cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			allowedOrigin := ""
			for _, o := range cfg.AllowedOrigins {
				if o == "*" {
					allowed = true
					allowedOrigin = "*"
					break
				}
				if o == origin {
					allowed = true
					allowedOrigin = origin
					break
				}
			}

			if allowed && allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			}
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func prepareAllowedHeaders(headers []string) string {
	for _, h := range headers {
		if h == "*" {
			return strings.Join([]string{
				"Accept", "Content-Type", "Authorization", "Origin", "X-Requested-With",
			}, ", ")
		}
	}
	hasAuth := false
	for _, h := range headers {
		if strings.EqualFold(h, "Authorization") {
			hasAuth = true
			break
		}
	}
	if !hasAuth {
		headers = append(headers, "Authorization")
	}
	return strings.Join(headers, ", ")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware replaces the teacher's gRPC unary/stream interceptor
// pair with a plain http.Handler wrapper, keeping the same
// method/duration/status log-field shape since this gateway exposes no RPC
// surface.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		metrics.Get().RecordHTTPRequest(r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status), duration)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}
