package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"docverify/internal/analysis"
	"docverify/internal/apiclient"
	authHandler "docverify/internal/auth/handler"
	authService "docverify/internal/auth/service"
	"docverify/internal/documents"
	documentStore "docverify/internal/documents/store"
	httpapi "docverify/internal/http"
	jwttoken "docverify/internal/jwt_token"
	"docverify/internal/platform/config"
	"docverify/internal/platform/httpserver"
	"docverify/internal/platform/logger"
	"docverify/internal/platform/metrics"
	"docverify/internal/platform/middleware"
	ratelimit "docverify/internal/ratelimit/middleware"
	wizardHandler "docverify/internal/wizard/handler"
	wizardService "docverify/internal/wizard/service"
	wizardStore "docverify/internal/wizard/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	stores, err := openAuthStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	analyzer, err := newAnalyzer(cfg, log, m)
	if err != nil {
		return err
	}

	jwt := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	auth := authService.New(stores.users, stores.sessions, jwt,
		authService.WithLogger(log),
		authService.WithMetrics(m),
		authService.WithTokenTTL(cfg.Auth.TokenTTL),
	)
	if cfg.Auth.SeedDemoUser {
		if err := auth.SeedDemoUser(ctx); err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		log.InfoContext(ctx, "demo user available", "email", authService.DemoUserEmail)
	}
	requireAuth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwt), auth, log)

	limiter := ratelimit.New(stores.limits, cfg.RateLimit.AuthRequests, cfg.RateLimit.Window, log,
		ratelimit.WithMetrics(m),
	)

	policy := documents.NewUploadPolicy(cfg.Upload)
	wizards := wizardService.New(wizardStore.New(), documentStore.NewInMemoryDocumentStore(), analyzer, policy,
		wizardService.WithLogger(log),
		wizardService.WithMetrics(m),
	)

	proxies, err := cfg.RateLimit.ProxyPrefixes()
	if err != nil {
		return err
	}
	router := httpapi.New(log, m, prometheus.DefaultGatherer, analyzer, httpapi.WithTrustedProxies(proxies)).Handler(
		httpapi.WithMiddleware(
			authHandler.New(auth, log, requireAuth,
				authHandler.WithLoginHook(func(ctx context.Context) { limiter.Reset(ctx, "auth") }),
			),
			limiter.Limit("auth"),
		),
		documents.NewHandler(),
		wizardHandler.New(wizards, log, requireAuth, policy.MaxSize),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting docverify gateway", "addr", cfg.Server.Addr, "backend", string(cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newAnalyzer returns the remote adapter over the retrying client, or the
// in-process mock.
func newAnalyzer(cfg config.Config, log *slog.Logger, m *metrics.Metrics) (analysis.Analyzer, error) {
	if cfg.Backend == config.BackendRemote {
		client, err := apiclient.NewFromConfig(cfg.API,
			apiclient.WithLogger(log),
			apiclient.WithMetrics(m),
		)
		if err != nil {
			return nil, fmt.Errorf("build api client: %w", err)
		}
		return analysis.NewRemote(client, log), nil
	}
	return analysis.NewMock(
		analysis.WithLatency(cfg.Mock.MinDelay, cfg.Mock.MaxDelay),
		analysis.WithMockLogger(log),
	), nil
}
