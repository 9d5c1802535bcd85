package auth

import (
	"testing"
	"time"

	"jobtrack/config"
	domainerrors "jobtrack/internal/domain/errors"
	mockSvc "jobtrack/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 14 * 24 * time.Hour,
		},
	}
	cfg.SecretKey.Access = "access-secret-for-tests"
	cfg.SecretKey.Refresh = "refresh-secret-for-tests"

	return cfg
}

func TestJWTService_IssueAndValidatePair(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	userID := uuid.New()
	accessToken, refreshToken, err := svc.IssuePair(userID)
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	accessClaims, err := svc.ValidateAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, accessClaims.UserID)

	refreshClaims, err := svc.ValidateRefresh(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
}

func TestJWTService_RejectsWrongKind(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	accessToken, refreshToken, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateAccess(refreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrWrongTokenKind))

	_, err = svc.ValidateRefresh(accessToken)
	assert.True(t, errors.Is(err, domainerrors.ErrWrongTokenKind))
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	accessToken, _, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = svc.ValidateAccess(accessToken)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpired))
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	accessToken, _, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	tampered := accessToken[:len(accessToken)-2] + "xx"

	_, err = svc.ValidateAccess(tampered)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenInvalid))
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Now())
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	_, err = svc.ValidateAccess("not-a-jwt")
	assert.True(t, errors.Is(err, domainerrors.ErrTokenInvalid))
}

func TestJWTService_HashTokenIsDeterministicAndOpaque(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Now())
	svc, err := NewJWTService(newTestTokenConfig(), clock)
	require.NoError(t, err)

	first := svc.HashToken("some-refresh-token")
	second := svc.HashToken("some-refresh-token")
	other := svc.HashToken("another-refresh-token")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
	assert.NotContains(t, first, "some-refresh-token")
}

func TestNewJWTService_RequiresSecrets(t *testing.T) {
	cfg := newTestTokenConfig()
	cfg.SecretKey.Access = ""

	_, err := NewJWTService(cfg, mockSvc.NewFakeClock(time.Now()))
	assert.Error(t, err)
}
