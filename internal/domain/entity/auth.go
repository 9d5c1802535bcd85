// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies how a credential was established.
type ProviderType = string

const (
	// ProviderTypeEmail marks a local email/password credential.
	ProviderTypeEmail ProviderType = "email"
)

// Authentication represents a single method of logging in (a credential).
// Today only the local email/password provider exists; the record shape keeps
// room for additional providers without touching the User entity.
type Authentication struct {
	ID             uuid.UUID // The unique ID for this specific authentication record itself.
	UserID         uuid.UUID // Links this authentication method to the User it belongs to.
	Provider       string    // The authentication provider, e.g. "email".
	ProviderUserID string    // The user's unique ID within the provider (the email address for "email").
	PasswordHash   string    // Stores the bcrypt-hashed password, never the plaintext.
	CreatedAt      time.Time // Timestamp of when this authentication method was created.
}

// RefreshToken represents a long-lived, authorized local session.
// It is used to obtain a new access token after the old one expires, without
// requiring credentials. Rotation deletes the row and inserts a new one, so a
// rotated refresh token can never be replayed.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token; the raw value is never stored.
	ExpiresAt time.Time // The exact time when this refresh token becomes invalid.
	CreatedAt time.Time // Timestamp of when this session was created.
}

// Active reports whether the session is still usable at the given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
