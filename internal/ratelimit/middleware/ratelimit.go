package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"docverify/internal/platform/metrics"
	"docverify/internal/ratelimit/models"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Store counts requests per key in a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (models.Result, error)
	Reset(ctx context.Context, key string) error
}

// Middleware limits requests per client IP. Store failures let the request
// through.
type Middleware struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(mw *Middleware) {
		if now != nil {
			mw.now = now
		}
	}
}

// New returns a limiter admitting limit requests per window. A limit of zero
// or less disables it.
func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	mw := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(mw)
	}
	if limit <= 0 {
		logger.Info("rate limiting disabled")
	}
	return mw
}

// Limit applies the per-IP limit under scope; requests in different scopes
// are counted separately.
func (mw *Middleware) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mw.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			res, err := mw.store.Allow(ctx, key(scope, ip), mw.limit, mw.window)
			if err != nil {
				mw.logger.ErrorContext(ctx, "failed to check rate limit",
					"scope", scope,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, res)
			if !res.Allowed {
				mw.metrics.IncrementRateLimited(scope)
				mw.logger.WarnContext(ctx, "rate limit exceeded",
					"scope", scope,
					"client_ip", ip,
					"request_id", requestcontext.RequestID(ctx),
				)
				retry := int(math.Ceil(res.RetryAfter(mw.now()).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Reset clears the calling client's window under scope, e.g. after it proved
// who it is. Failures are logged and otherwise ignored.
func (mw *Middleware) Reset(ctx context.Context, scope string) {
	if mw.limit <= 0 {
		return
	}
	if err := mw.store.Reset(ctx, key(scope, requestcontext.ClientIP(ctx))); err != nil {
		mw.logger.WarnContext(ctx, "failed to reset rate limit",
			"scope", scope,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func key(scope, ip string) string {
	return scope + ":" + ip
}

func addRateLimitHeaders(w http.ResponseWriter, res models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}
