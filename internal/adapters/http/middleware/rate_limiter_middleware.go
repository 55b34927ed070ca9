// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ratewall/ratewall/internal/core/ports"
)

const rateLimitExceededMessage = "you have reached the maximum number of requests or actions allowed within a certain time frame"

// fallbackClientKey pools requests whose client address cannot be determined
// under one shared budget instead of giving each an unlimited one.
const fallbackClientKey = "unknown"

// NewRateLimiter guards the wrapped handler with a per-client sliding window
// check. Rejections answer 429 with a Retry-After header; they are expected
// outcomes of normal operation and are not logged as failures.
func NewRateLimiter(limiter ports.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientKey(r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("rate limiter backend failed",
					zap.String("key", key),
					zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if !decision.Allowed {
				writeTooManyRequests(w, decision.RetryAfterSeconds)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey derives the rate limiting key for a request. Precedence: first
// entry of X-Forwarded-For, then X-Real-IP, then the host part of the
// connection address, then a shared fallback key.
func ClientKey(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" {
		return xRealIP
	}

	remoteAddr := strings.TrimSpace(r.RemoteAddr)
	if remoteAddr == "" {
		return fallbackClientKey
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSeconds int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":               rateLimitExceededMessage,
		"retry_after_seconds": retryAfterSeconds,
	})
}
