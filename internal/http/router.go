package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/internal/analysis/models"
	"docverify/internal/platform/metrics"
	"docverify/internal/platform/middleware"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// WithMiddleware mounts h in a route group that runs mws first.
func WithMiddleware(h Registrar, mws ...func(http.Handler) http.Handler) Registrar {
	return group{h: h, mws: mws}
}

type group struct {
	h   Registrar
	mws []func(http.Handler) http.Handler
}

func (g group) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(g.mws...)
		g.h.Register(r)
	})
}

// HealthChecker reports the health of the analysis backend.
type HealthChecker interface {
	Health(ctx context.Context) (models.Health, error)
}

// HealthResponse is served on GET /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Backend models.Health `json:"backend"`
}

// Router assembles the gateway: shared middleware, health, metrics and the
// domain handlers.
type Router struct {
	logger         *slog.Logger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	health         HealthChecker
	trustedProxies []netip.Prefix
}

type Option func(*Router)

// WithTrustedProxies lets forwarding headers from these peers set the client IP.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(rt *Router) {
		rt.trustedProxies = prefixes
	}
}

func New(logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer, health HealthChecker, opts ...Option) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	rt := &Router{
		logger:   logger,
		metrics:  m,
		gatherer: gatherer,
		health:   health,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler mounts handlers behind request id, client metadata, recovery and
// request logging.
func (rt *Router) Handler(handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata(rt.trustedProxies...))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger, rt.metrics))

	r.Get("/health", rt.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	backend, err := rt.health.Health(ctx)
	if err != nil {
		rt.logger.WarnContext(ctx, "analysis backend unhealthy",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "analysis backend unavailable"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Backend: backend})
}
