package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docverify/internal/auth/handler/mocks"
	"docverify/internal/auth/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type AuthHandlerSuite struct {
	suite.Suite
	service   *mocks.MockService
	router    chi.Router
	userID    uuid.UUID
	sessionID uuid.UUID
	logins    int
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.userID = uuid.New()
	s.sessionID = uuid.New()

	fakeAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, testutil.WithAuth(r, s.userID, s.sessionID))
		})
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	s.logins = 0
	New(s.service, logger, fakeAuth, WithLoginHook(func(context.Context) { s.logins++ })).Register(s.router)
}

func (s *AuthHandlerSuite) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerSuite) authResult() *models.AuthResult {
	return &models.AuthResult{
		AccessToken: "signed-token",
		TokenType:   "Bearer",
		ExpiresIn:   86400,
		User: models.UserProfile{
			ID:        s.userID,
			Name:      "Jane",
			Email:     "jane@example.com",
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func (s *AuthHandlerSuite) TestSignup() {
	s.Run("created with token and profile", func() {
		s.service.EXPECT().Signup(gomock.Any(), &models.SignupRequest{
			Name:            "Jane",
			Email:           "jane@example.com",
			Password:        "password1",
			ConfirmPassword: "password1",
			AcceptTerms:     true,
		}).Return(s.authResult(), nil)

		rec := s.do(http.MethodPost, "/auth/signup",
			`{"name":"Jane","email":"jane@example.com","password":"password1","confirm_password":"password1","accept_terms":true}`, false)

		s.Equal(http.StatusCreated, rec.Code)
		var body map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("signed-token", body["access_token"])
		s.Equal("Bearer", body["token_type"])
		user := body["user"].(map[string]any)
		s.Equal("jane@example.com", user["email"])
		s.NotContains(user, "password_hash")
	})

	s.Run("validation errors map to 400", func() {
		s.service.EXPECT().Signup(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "Passwords do not match"))

		rec := s.do(http.MethodPost, "/auth/signup",
			`{"name":"Jane","email":"jane@example.com","password":"password1","confirm_password":"other","accept_terms":true}`, false)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "Passwords do not match")
	})

	s.Run("duplicate email maps to 409", func() {
		s.service.EXPECT().Signup(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists"))

		rec := s.do(http.MethodPost, "/auth/signup", `{"name":"Jane","email":"jane@example.com"}`, false)
		testutil.AssertError(s.T(), rec, http.StatusConflict, string(dErrors.CodeConflict))
	})

	s.Run("malformed body never reaches the service", func() {
		rec := s.do(http.MethodPost, "/auth/signup", `{"name":`, false)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "invalid request body")
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("returns token", func() {
		s.service.EXPECT().Login(gomock.Any(), &models.LoginRequest{Email: "jane@example.com", Password: "password1"}).
			Return(s.authResult(), nil)

		rec := s.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"password1"}`, false)
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "signed-token")
		s.Equal(1, s.logins)
	})

	s.Run("bad credentials map to 401", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password"))

		rec := s.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"nope"}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Contains(rec.Body.String(), "Invalid email or password")
		s.Equal(1, s.logins, "failed logins do not run the hook")
	})

	s.Run("internal errors hide their description", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "redis down"))

		rec := s.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"password1"}`, false)
		s.NotContains(rec.Body.String(), "redis down")
		testutil.AssertError(s.T(), rec, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	s.Run("revokes the caller's session", func() {
		s.service.EXPECT().Logout(gomock.Any(), s.userID, s.sessionID).Return(nil)

		rec := s.do(http.MethodPost, "/auth/logout", "", true)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("requires authentication", func() {
		rec := s.do(http.MethodPost, "/auth/logout", "", false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestMe() {
	s.Run("returns profile", func() {
		profile := s.authResult().User
		s.service.EXPECT().Me(gomock.Any(), s.userID).Return(&profile, nil)

		rec := s.do(http.MethodGet, "/auth/me", "", true)
		s.Equal(http.StatusOK, rec.Code)
		var body models.UserProfile
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal(profile.ID, body.ID)
		s.Equal("Jane", body.Name)
	})

	s.Run("missing user maps to 404", func() {
		s.service.EXPECT().Me(gomock.Any(), s.userID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

		rec := s.do(http.MethodGet, "/auth/me", "", true)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}
