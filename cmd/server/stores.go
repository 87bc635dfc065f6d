package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	authService "docverify/internal/auth/service"
	sessionStore "docverify/internal/auth/store/session"
	userStore "docverify/internal/auth/store/user"
	"docverify/internal/platform/config"
	"docverify/internal/platform/postgres"
	"docverify/internal/platform/redis"
	ratelimit "docverify/internal/ratelimit/middleware"
	"docverify/internal/ratelimit/store/bucket"
)

// authStores picks the user, session and rate limit backends. Postgres wins for
// users when a DSN is set, Redis is used for whatever Postgres does not cover,
// and the in-memory stores are the fallback.
type authStores struct {
	users    authService.UserStore
	sessions authService.SessionStore
	limits   ratelimit.Store
	closers  []func() error
}

func (s *authStores) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func openAuthStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*authStores, error) {
	stores := &authStores{
		users:    userStore.New(),
		sessions: sessionStore.New(),
		limits:   bucket.NewInMemoryBucketStore(),
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		stores.closers = append(stores.closers, rc.Close)
		stores.users = userStore.NewRedis(rc.Client)
		stores.sessions = sessionStore.NewRedis(rc.Client)
		stores.limits = bucket.NewRedis(rc.Client)
		log.InfoContext(ctx, "using redis for users, sessions and rate limits")
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		stores.closers = append(stores.closers, db.Close)
		users, err := postgresUsers(ctx, db)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.users = users
		log.InfoContext(ctx, "using postgres for users")
	}

	return stores, nil
}

func postgresUsers(ctx context.Context, db *sql.DB) (*userStore.PostgresStore, error) {
	users := userStore.NewPostgres(db)
	if err := users.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure users schema: %w", err)
	}
	return users, nil
}
