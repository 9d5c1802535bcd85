// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// BoardCredential holds the OAuth token pair issued by the external job board
// for one user. The record is all-or-nothing: it either exists with all three
// token fields populated or it does not exist at all. It is created by the
// OAuth callback, mutated only by the refresh coordinator, and deleted on
// disconnect or when the board reports the refresh token dead.
type BoardCredential struct {
	UserID       uuid.UUID // The user this credential belongs to; one credential per user.
	AccessToken  string    // Short-lived token presented on board API calls. Never logged.
	RefreshToken string    // Long-lived token used to obtain a new access token. Never logged.
	ExpiresAt    time.Time // Absolute expiry of the access token as reported by the board.
	CreatedAt    time.Time // Timestamp of when the credential row was first created.
	UpdatedAt    time.Time // Timestamp of the last refresh.
}

// ExpiringSoon reports whether the access token should be treated as expired
// at the given instant. The margin guards against sending a request that
// races provider-side expiry and clock skew: a token inside the margin window
// is refreshed before use, never exactly at expiry.
func (c *BoardCredential) ExpiringSoon(now time.Time, margin time.Duration) bool {
	return !c.ExpiresAt.After(now.Add(margin))
}
