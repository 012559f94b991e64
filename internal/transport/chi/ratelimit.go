package chi

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/typesense-mcp/internal/usecase/ratelimit"
)

// Limiter decides whether a caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, caller string) ratelimit.Decision
}

// RateLimitMiddleware limits requests per API key, or per client IP when the
// request carries no bearer token. A nil limiter disables limiting.
func RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			d := limiter.Allow(r.Context(), callerKey(r))
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(ratelimit.DefaultWindow.Seconds())))
				writeError(w, http.StatusTooManyRequests, codeRateLimited, d.Err().Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return "key:" + token
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
