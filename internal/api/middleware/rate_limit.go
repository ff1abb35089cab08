package middleware

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kamtechie/zenji/internal/api/response"
)

// RateLimitedRecorder records requests rejected by the rate limiter (optional).
type RateLimitedRecorder interface {
	RecordRateLimited(ctx context.Context)
}

// RateLimit returns middleware that admits at most rps requests per second with the given burst,
// shared across all clients. Rejected requests get 429 with Retry-After.
func RateLimit(rps float64, burst int, recorder RateLimitedRecorder) func(http.Handler) http.Handler {
	if rps <= 0 || burst <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				if recorder != nil {
					recorder.RecordRateLimited(r.Context())
				}

				response.RespondTooManyRequests(w, delay)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
