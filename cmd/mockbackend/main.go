package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"docverify/internal/analysis"
	"docverify/internal/documents"
	documentStore "docverify/internal/documents/store"
	"docverify/internal/mockapi"
	"docverify/internal/platform/config"
	"docverify/internal/platform/httpserver"
	"docverify/internal/platform/logger"
	"docverify/internal/platform/middleware"
)

// main serves the external analysis API contract from the mock analyzer.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := analysis.NewMock(
		analysis.WithLatency(cfg.Mock.MinDelay, cfg.Mock.MaxDelay),
		analysis.WithMockLogger(log),
	)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log, nil))
	mockapi.New(analyzer, documentStore.NewInMemoryDocumentStore(), documents.NewUploadPolicy(cfg.Upload), log).Register(r)

	srv := httpserver.New(cfg.Server.MockBackendAddr, r)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mock analysis backend", "addr", cfg.Server.MockBackendAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("mock backend exited", "error", err)
		os.Exit(1)
	}
}
