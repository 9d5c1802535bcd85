package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BoardConnectionStatus describes the user's link to the external board.
type BoardConnectionStatus struct {
	Connected bool
	ExpiresAt *time.Time
}

// BoardUsecase drives the OAuth authorization-code flow against the external
// job board and manages the stored credential.
type BoardUsecase interface {
	// ConnectURL starts the authorization flow: it stores a fresh one-time
	// state value and returns the board URL to redirect the user to.
	ConnectURL(ctx context.Context, userID uuid.UUID) (string, error)

	// HandleCallback completes the flow. The state must match a pending
	// value (single use); the code is exchanged and the resulting credential
	// stored for the user the state was issued to.
	HandleCallback(ctx context.Context, state, code string) error

	// Disconnect removes the stored credential.
	Disconnect(ctx context.Context, userID uuid.UUID) error

	// Status reports whether the user is connected and until when the
	// current access token is valid. Token values are never exposed.
	Status(ctx context.Context, userID uuid.UUID) (*BoardConnectionStatus, error)
}

// CredentialUsecase hands out a valid board access token for a user,
// refreshing behind the scenes when needed. Concurrent callers for the same
// user share one refresh; independent users never block each other.
type CredentialUsecase interface {
	// GetValidAccessToken returns an access token guaranteed to be outside
	// the expiry margin at the time of the call. When the board reports the
	// refresh token dead, the stored credential is removed and
	// BOARD_REAUTH_REQUIRED returned; subsequent calls fail fast without
	// touching the network until the user reconnects.
	GetValidAccessToken(ctx context.Context, userID uuid.UUID) (string, error)
}
