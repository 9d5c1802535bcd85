// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobtrack/config"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using
// the JWT standard. Access and refresh tokens are signed with distinct HMAC
// secrets and carry an explicit "kind" claim; both must match for a token to
// be accepted.
type jwtService struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         service.Clock
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config, clock service.Clock) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     cfg.Auth.AccessTokenTTL,
		refreshTTL:    cfg.Auth.RefreshTokenTTL,
		clock:         clock,
	}, nil
}

// IssuePair mints a new access+refresh token pair for a user.
func (s *jwtService) IssuePair(userID uuid.UUID) (string, string, error) {
	accessToken, err := s.sign(userID, service.TokenKindAccess, s.accessTTL, s.accessSecret)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to sign access token")
	}

	refreshToken, err := s.sign(userID, service.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to sign refresh token")
	}

	return accessToken, refreshToken, nil
}

// ValidateAccess checks an access token: signature, expiry and kind.
func (s *jwtService) ValidateAccess(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenKindAccess)
}

// ValidateRefresh checks a refresh token: signature, expiry and kind.
func (s *jwtService) ValidateRefresh(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenKindRefresh)
}

// HashToken returns the hex SHA-256 digest of a raw token.
func (s *jwtService) HashToken(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))

	return hex.EncodeToString(sum[:])
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) secretFor(kind string) string {
	if kind == service.TokenKindRefresh {
		return s.refreshSecret
	}

	return s.accessSecret
}

func (s *jwtService) otherKind(kind string) string {
	if kind == service.TokenKindRefresh {
		return service.TokenKindAccess
	}

	return service.TokenKindRefresh
}

func (s *jwtService) validate(tokenString, expectedKind string) (*service.Claims, error) {
	claims, err := s.parse(tokenString, s.secretFor(expectedKind))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired.WrapMessage("token past its expiry")
		}

		// A token of the other kind is signed with the other secret, so a
		// signature failure here may really be a kind mismatch. Distinguish
		// the two so callers can report it precisely.
		if other, otherErr := s.parse(tokenString, s.secretFor(s.otherKind(expectedKind))); otherErr == nil && other.Kind != expectedKind {
			return nil, domainerrors.ErrWrongTokenKind.WrapMessage("expected a " + expectedKind + " token")
		}

		return nil, domainerrors.ErrTokenInvalid.WrapMessage("failed to parse token")
	}

	if claims.Kind != expectedKind {
		return nil, domainerrors.ErrWrongTokenKind.WrapMessage("expected a " + expectedKind + " token")
	}

	return claims, nil
}

func (s *jwtService) parse(tokenString, secret string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !token.Valid {
		return nil, errors.WithStack(jwt.ErrTokenUnverifiable)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject claim")
	}
	claims.UserID = userID

	return claims, nil
}

func (s *jwtService) sign(userID uuid.UUID, kind string, ttl time.Duration, secret string) (string, error) {
	now := s.clock.Now()
	claims := &service.Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signed, nil
}
