// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"jobtrack/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrBoardCredentialNotFound is returned when no board credential is stored
// for a user, i.e. the account is not connected to the external board.
var ErrBoardCredentialNotFound = errors.New("board credential not found")

// BoardCredentialRepository persists the external OAuth token pair, one row
// per user. The credential is written only by the OAuth callback and the
// refresh coordinator; everything else treats it as read-only.
type BoardCredentialRepository interface {
	// FindByUserID retrieves the stored credential for a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.BoardCredential, error)

	// Upsert stores the credential, replacing any previous row for the user
	// in a single write so readers observe either the old or the new token
	// pair, never a mix.
	Upsert(ctx context.Context, cred *entity.BoardCredential) error

	// DeleteByUserID removes the stored credential, disconnecting the account.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// ListConnectedUserIDs returns the IDs of all users holding a credential,
	// used by the scheduled reconciliation pass.
	ListConnectedUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
