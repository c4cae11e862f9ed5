package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"inhand/internal/platform/cache"
	"inhand/internal/transport/http/api"
	"inhand/internal/transport/http/shared"
)

type RateLimitKeyFunc func(r *http.Request) string

// limiter admits up to limit hits per key and window. Keys are namespaced by
// scope so several limiters can share one counter.
type limiter struct {
	counter cache.Counter
	scope   string
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
}

func (l limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = "ip:" + shared.ClientIP(r)
	}

	count, resetIn, err := l.counter.Incr(r.Context(), "rl:"+l.scope+":"+key, l.window)
	if err != nil {
		slog.Warn("rate limit counter unavailable", "scope", l.scope, "err", err)
		return true
	}

	resetSec := ceilSeconds(resetIn)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-int(count), 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if count <= int64(l.limit) {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded",
		"scope", l.scope,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit throttles every request per signed-in user, or per client IP for
// anonymous callers.
func RateLimit(counter cache.Counter, limit int, window time.Duration) func(http.Handler) http.Handler {
	l := limiter{counter: counter, scope: "all", limit: limit, window: window, keyFn: userOrIPKey}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter limits to credential endpoints and
// to the mutations that touch stored history. Login and register are
// limited per IP and per submitted email, at a quarter of baseLimit. History
// mutations get half of baseLimit per user.
func SensitiveMutationRateLimit(counter cache.Counter, baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	authIP := limiter{counter: counter, scope: "auth-ip", limit: authLimit, window: window, keyFn: ipKey}
	authEmail := limiter{counter: counter, scope: "auth-email", limit: authLimit, window: window, keyFn: emailOrIPKey}
	history := limiter{counter: counter, scope: "history", limit: max(baseLimit/2, 1), window: window, keyFn: userOrIPKey}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveScope(r.Method, r.URL.Path) {
			case scopeCredentials:
				if !authIP.allow(w, r) || !authEmail.allow(w, r) {
					return
				}
			case scopeHistory:
				if !history.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return ipKey(r)
}

func ipKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

func emailOrIPKey(r *http.Request) string {
	if email := peekJSONString(r, "email"); email != "" {
		return "email:" + strings.ToLower(email)
	}
	return ipKey(r)
}

// peekJSONString reads one string field from a JSON body and restores the
// body for the next handler.
func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	orig := r.Body
	raw, err := io.ReadAll(io.LimitReader(orig, 64<<10))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), orig), orig}
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type rateScope int

const (
	scopeNone rateScope = iota
	scopeCredentials
	scopeHistory
)

func sensitiveScope(method, path string) rateScope {
	path = strings.TrimPrefix(path, "/api/v1")
	switch {
	case method == http.MethodPost && (path == "/auth/login" || path == "/auth/register"):
		return scopeCredentials
	case method == http.MethodPost && (path == "/salary/calculations" || path == "/admin/retention/run"):
		return scopeHistory
	case method == http.MethodDelete && strings.HasPrefix(path, "/salary/calculations/"):
		return scopeHistory
	}
	return scopeNone
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
