package ratelimit

import (
	"net/http"
	"strconv"
)

// Middleware builds an http.Handler wrapper that rejects requests exceeding
// lim's limit for extractor's key with 429 Too Many Requests.
func Middleware(lim Limiter, extractor KeyExtractor) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = IPKeyExtractor
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractor(r)
			allowed, err := lim.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				info, infoErr := lim.GetInfo(r.Context(), key)
				if infoErr == nil {
					w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
					w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
				}
				http.Error(w, ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
