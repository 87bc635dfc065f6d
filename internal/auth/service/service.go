package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docverify/internal/auth/device"
	"docverify/internal/auth/models"
	"docverify/internal/platform/metrics"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// UserStore persists accounts. Save returns sentinel.ErrConflict when the email is taken.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore persists sessions. Execute loads the session, runs validate and
// then mutate under the store's lock (or transaction) and saves the result.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Session) error, mutate func(*models.Session)) (*models.Session, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, sessionID uuid.UUID, expiresIn time.Duration) (string, error)
}

const (
	DemoUserEmail    = "demo@example.com"
	DemoUserPassword = "password"
	DemoUserName     = "Demo User"
)

// Service handles signup, login, logout and session checks.
type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     TokenIssuer
	devices    *device.Service
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	// dummyHash keeps login timing similar for unknown emails.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithDeviceService(d *device.Service) Option {
	return func(s *Service) {
		if d != nil {
			s.devices = d
		}
	}
}

func New(users UserStore, sessions SessionStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		devices:    device.NewService(true),
		logger:     slog.New(slog.DiscardHandler),
		tokenTTL:   24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("docverify-timing-pad"), s.bcryptCost)
	return s
}

// Signup creates the account and opens a first session.
func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)

	return s.openSession(ctx, user)
}

func (s *Service) createUser(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return user, nil
}

// Login checks the password and opens a session. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.IncrementLogin("invalid")
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); cmpErr != nil || user == nil {
		s.metrics.IncrementLogin("failure")
		s.logger.WarnContext(ctx, "login failed",
			"reason", "invalid_credentials",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")
	}

	s.metrics.IncrementLogin("success")
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	now := s.now()
	userAgent := requestcontext.UserAgent(ctx)
	session := &models.Session{
		ID:                    uuid.New(),
		UserID:                user.ID,
		DeviceDisplayName:     device.ParseUserAgent(userAgent),
		DeviceFingerprintHash: s.devices.ComputeFingerprint(userAgent),
		ClientIP:              requestcontext.ClientIP(ctx),
		CreatedAt:             now,
		ExpiresAt:             now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, session.ID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "session opened",
		"user_id", user.ID.String(),
		"session_id", session.ID.String(),
		"device", session.DeviceDisplayName,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.AuthResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        user.Profile(),
	}, nil
}

// Logout revokes the caller's session. Revoking an already revoked session succeeds.
func (s *Service) Logout(ctx context.Context, userID, sessionID uuid.UUID) error {
	if userID == uuid.Nil {
		return dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	if sessionID == uuid.Nil {
		return dErrors.New(dErrors.CodeBadRequest, "session ID required")
	}

	now := s.now()
	_, err := s.sessions.Execute(ctx, sessionID,
		func(sess *models.Session) error {
			if sess.UserID != userID {
				return dErrors.New(dErrors.CodeForbidden, "forbidden")
			}
			return nil
		},
		func(sess *models.Session) {
			if !sess.Revoked {
				sess.Revoked = true
				sess.RevokedAt = now
			}
		},
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			return err
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	s.logger.InfoContext(ctx, "session revoked",
		"user_id", userID.String(),
		"session_id", sessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	profile := user.Profile()
	return &profile, nil
}

// IsSessionActive implements middleware.SessionChecker.
func (s *Service) IsSessionActive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sess.IsActive(s.now()), nil
}

// SeedDemoUser creates demo@example.com if it does not exist yet.
func (s *Service) SeedDemoUser(ctx context.Context) error {
	_, err := s.users.FindByEmail(ctx, DemoUserEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up demo user")
	}
	if _, err := s.createUser(ctx, DemoUserName, DemoUserEmail, DemoUserPassword); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "demo user seeded", "email", DemoUserEmail)
	return nil
}
