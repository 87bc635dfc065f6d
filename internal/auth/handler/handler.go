package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docverify/internal/auth/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Service defines the auth operations the HTTP layer needs.
type Service interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	Logout(ctx context.Context, userID, sessionID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// Handler serves /auth endpoints.
type Handler struct {
	auth        Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
	onLogin     func(ctx context.Context)
}

type Option func(*Handler)

// WithLoginHook runs fn after every successful login, before the response is
// written.
func WithLoginHook(fn func(ctx context.Context)) Option {
	return func(h *Handler) {
		h.onLogin = fn
	}
}

// New creates an auth Handler. requireAuth guards logout and me.
func New(auth Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler, opts ...Option) *Handler {
	h := &Handler{
		auth:        auth,
		logger:      logger,
		requireAuth: requireAuth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignup)
	r.Post("/auth/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		if h.requireAuth != nil {
			r.Use(h.requireAuth)
		}
		r.Post("/auth/logout", h.HandleLogout)
		r.Get("/auth/me", h.HandleMe)
	})
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid signup request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.auth.Signup(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "signup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.auth.Login(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	if h.onLogin != nil {
		h.onLogin(ctx)
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.Logout(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx)); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.auth.Me(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "profile lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if de, ok := dErrors.As(err); ok && httputil.StatusFor(de.Code) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
		return
	}
	h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
}
