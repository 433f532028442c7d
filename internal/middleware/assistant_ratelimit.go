package middleware

import (
	"net/http"
	"strconv"

	"github.com/foodieshare/foodieshare-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Gemini calls are metered upstream, so the assistant gets its own budget.
// Signed-in users: 10 req/min, burst 5. Anything else falls back to the IP.
const (
	assistantRPM   = 10
	assistantBurst = 5
)

// AssistantRateLimit limits prompts per user. Mount it after RequireAuth so
// the key is the account rather than the shared NAT address.
func AssistantRateLimit() func(http.Handler) http.Handler {
	limiters := newKeyedLimiters(rate.Limit(float64(assistantRPM)/60), assistantBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientip.RealClientIP(r)
			if user, ok := UserFromContext(r.Context()); ok {
				key = "user:" + user.ID
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(assistantBurst))
			if !limiters.allow(key) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeJSONError(w, http.StatusTooManyRequests, "Too many assistant requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
