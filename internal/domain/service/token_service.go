package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "kind" claim. Kind discrimination is mandatory:
// a refresh token must never be accepted where an access token is required,
// and vice versa.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims defines the custom claims for the session JWTs.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Kind   string    `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and validating the local
// session token pair. Tokens are stateless and signed; no secret material is
// persisted beyond the signing keys.
type TokenService interface {
	// IssuePair mints a new access+refresh token pair for a user.
	IssuePair(userID uuid.UUID) (accessToken string, refreshToken string, err error)

	// ValidateAccess checks an access token: signature, expiry and kind.
	ValidateAccess(tokenString string) (*Claims, error)

	// ValidateRefresh checks a refresh token: signature, expiry and kind.
	ValidateRefresh(tokenString string) (*Claims, error)

	// HashToken returns the hex SHA-256 digest of a raw token, the only form
	// in which refresh tokens touch the database.
	HashToken(tokenString string) string

	// RefreshTokenDuration returns the configured refresh token lifetime.
	RefreshTokenDuration() time.Duration
}
