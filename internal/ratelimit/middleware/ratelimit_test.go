package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docverify/internal/platform/metrics"
	"docverify/internal/ratelimit/middleware/mocks"
	"docverify/internal/ratelimit/models"
	"docverify/pkg/requestcontext"
)

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks Store

type RateLimitSuite struct {
	suite.Suite
	store   *mocks.MockStore
	metrics *metrics.Metrics
	now     time.Time
	reached bool
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.store = mocks.NewMockStore(gomock.NewController(s.T()))
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.reached = false
}

func (s *RateLimitSuite) serve(limit int) *httptest.ResponseRecorder {
	mw := New(s.store, limit, time.Minute, slog.New(slog.DiscardHandler),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "203.0.113.9", "curl/8"))
	rec := httptest.NewRecorder()
	mw.Limit("auth")(next).ServeHTTP(rec, req)
	return rec
}

func (s *RateLimitSuite) TestAllowedRequestCarriesHeaders() {
	s.store.EXPECT().Allow(gomock.Any(), "auth:203.0.113.9", 5, time.Minute).
		Return(models.Result{Allowed: true, Limit: 5, Remaining: 4, ResetAt: s.now.Add(time.Minute)}, nil)

	rec := s.serve(5)
	s.True(s.reached)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("5", rec.Header().Get("X-RateLimit-Limit"))
	s.Equal("4", rec.Header().Get("X-RateLimit-Remaining"))
}

func (s *RateLimitSuite) TestRejectedRequest() {
	s.store.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Result{Allowed: false, Limit: 5, ResetAt: s.now.Add(42 * time.Second)}, nil)

	rec := s.serve(5)
	s.False(s.reached)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("42", rec.Header().Get("Retry-After"))
	s.Contains(rec.Body.String(), "rate_limit_exceeded")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RateLimited.WithLabelValues("auth")))
}

func (s *RateLimitSuite) TestStoreFailureFailsOpen() {
	s.store.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Result{}, errors.New("redis down"))

	rec := s.serve(5)
	s.True(s.reached)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RateLimitSuite) TestDisabledSkipsStore() {
	rec := s.serve(0)
	s.True(s.reached)
	s.Empty(rec.Header().Get("X-RateLimit-Limit"))
}

func (s *RateLimitSuite) TestResetClearsCallerWindow() {
	s.store.EXPECT().Reset(gomock.Any(), "auth:203.0.113.9").Return(nil)

	mw := New(s.store, 5, time.Minute, slog.New(slog.DiscardHandler))
	ctx := requestcontext.WithClientMetadata(s.T().Context(), "203.0.113.9", "curl/8")
	mw.Reset(ctx, "auth")
}

func (s *RateLimitSuite) TestResetFailureIsSwallowed() {
	s.store.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	mw := New(s.store, 5, time.Minute, slog.New(slog.DiscardHandler))
	s.NotPanics(func() { mw.Reset(s.T().Context(), "auth") })
}

func (s *RateLimitSuite) TestResetDisabledSkipsStore() {
	mw := New(s.store, 0, time.Minute, slog.New(slog.DiscardHandler))
	mw.Reset(s.T().Context(), "auth")
}
