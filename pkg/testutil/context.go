package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"docverify/pkg/requestcontext"
)

// WithAuth puts the caller identity on the request the way RequireAuth does.
func WithAuth(req *http.Request, userID, sessionID uuid.UUID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}
