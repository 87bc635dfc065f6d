package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
// - ErrNotFound: no user, session, wizard or document under the key
// - ErrConflict: the key is already taken (duplicate email, document id)
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
