package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

type stubSessions struct {
	active bool
	err    error
}

func (s stubSessions) IsSessionActive(context.Context, uuid.UUID) (bool, error) {
	return s.active, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	valid := stubValidator{claims: &JWTClaims{UserID: userID.String(), SessionID: sessionID.String()}}

	var seenUser, seenSession uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = requestcontext.UserID(r.Context())
		seenSession = requestcontext.SessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  JWTValidator
		sessions   SessionChecker
		wantStatus int
	}{
		{"missing header", "", valid, stubSessions{active: true}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", valid, stubSessions{active: true}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("invalid")}, stubSessions{active: true}, http.StatusUnauthorized},
		{"malformed claims", "Bearer t", stubValidator{claims: &JWTClaims{UserID: "x", SessionID: "y"}}, stubSessions{active: true}, http.StatusUnauthorized},
		{"revoked session", "Bearer t", valid, stubSessions{active: false}, http.StatusUnauthorized},
		{"session lookup failure", "Bearer t", valid, stubSessions{err: errors.New("redis down")}, http.StatusInternalServerError},
		{"valid", "Bearer t", valid, stubSessions{active: true}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAuth(tt.validator, tt.sessions, discardLogger())(next)
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	require.Equal(t, userID, seenUser)
	require.Equal(t, sessionID, seenSession)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClientIPFromRequest(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		proxies []netip.Prefix
		want    string
	}{
		{name: "peer address", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "forwarded header from untrusted peer ignored", remote: "192.0.2.1:5555", xff: "203.0.113.7", proxies: proxies, want: "192.0.2.1"},
		{name: "no trusted proxies configured", remote: "10.0.0.5:80", xff: "203.0.113.7", want: "10.0.0.5"},
		{name: "trusted proxy", remote: "10.0.0.5:80", xff: "203.0.113.7", proxies: proxies, want: "203.0.113.7"},
		{name: "spoofed leftmost hop skipped", remote: "10.0.0.5:80", xff: "1.1.1.1, 203.0.113.7, 10.0.0.9", proxies: proxies, want: "203.0.113.7"},
		{name: "garbage hop stops the walk", remote: "10.0.0.5:80", xff: "not-an-ip", proxies: proxies, want: "10.0.0.5"},
		{name: "real ip from trusted proxy", remote: "10.0.0.5:80", realIP: "198.51.100.4", proxies: proxies, want: "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req, tt.proxies))
		})
	}
}

func TestClientMetadataStoresPeer(t *testing.T) {
	var got string
	h := ClientMetadata()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.ClientIP(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.1", got)
}
