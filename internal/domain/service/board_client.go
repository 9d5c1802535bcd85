package service

import (
	"context"

	"jobtrack/internal/domain/entity"
)

// BoardApplication is one application record as reported by the external
// board. The shape is closed and validated at the client boundary; malformed
// records are surfaced per record, never propagated as partial values.
type BoardApplication struct {
	ID        string // The board's application identifier.
	VacancyID string // The board's vacancy identifier.
	State     string // The board's raw state string, mapped via entity.MapBoardState.
}

// BoardClient talks to the external job board's OAuth and API endpoints.
// Every call is a blocking I/O boundary with a bounded timeout.
type BoardClient interface {
	// AuthorizationURL builds the board's authorization-code URL carrying the
	// given opaque state value.
	AuthorizationURL(state string) string

	// ExchangeCode trades a one-time authorization code for a token pair.
	// The returned credential has no UserID; the caller binds it.
	ExchangeCode(ctx context.Context, code string) (*entity.BoardCredential, error)

	// Refresh trades a refresh token for a fresh token pair. The board may
	// rotate the refresh token on every call, so the caller must always
	// persist the returned credential and discard the old one.
	Refresh(ctx context.Context, refreshToken string) (*entity.BoardCredential, error)

	// ListApplications fetches the user's application records from the board.
	ListApplications(ctx context.Context, accessToken string) ([]BoardApplication, error)
}
