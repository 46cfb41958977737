package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

const rateLimitWindow = time.Minute

// RateLimitMiddleware enforces a fixed-window request limit per caller,
// counted in a shared store so every instance sees the same totals.
type RateLimitMiddleware struct {
	store   usecase.RateLimitStore
	limit   int64
	metrics *metrics.Metrics
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware. limit is the
// number of requests allowed per minute.
func NewRateLimitMiddleware(store usecase.RateLimitStore, limit int, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{store: store, limit: int64(limit), metrics: m}
}

// Wrap wraps an http.Handler with rate limiting. Authenticated requests are
// keyed by user ID, everything else by client address.
func (m *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := UserIDFromContext(r.Context())
		if !ok || key == "" {
			key = r.RemoteAddr
		}

		count, err := m.store.Hit(r.Context(), key, rateLimitWindow)
		if err != nil {
			// A broken limiter store must not take the API down.
			log.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if count > m.limit {
			if m.metrics != nil {
				m.metrics.RateLimitRejections.WithLabelValues(r.URL.Path).Inc()
			}
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
