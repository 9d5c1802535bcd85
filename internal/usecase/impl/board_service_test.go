package impl

import (
	"context"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"jobtrack/config"
	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/infra/cache"
	mockRepo "jobtrack/internal/mocks/repository"
	mockSvc "jobtrack/internal/mocks/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBoardFixture(t *testing.T, now time.Time) (usecase.BoardUsecase, *mockRepo.MockRepositoryFactory, *mockSvc.MockBoardClient) {
	t.Helper()

	txManager, factory := mockRepo.NewMockRepositoryFactory(t)
	client := mockSvc.NewMockBoardClient(t)

	srv := NewBoardService(BoardServiceParams{
		TxManager:  txManager,
		Client:     client,
		StateStore: cache.NewTTLStore(mockSvc.NewFakeClock(now)),
		Config:     &config.Config{Board: &config.BoardConfig{StateTTL: 10 * time.Minute}},
		Logger:     newDiscardLogger(),
	})

	return srv, factory, client
}

// connectAndCaptureState drives ConnectURL and pulls the generated state out
// of the returned authorization URL, the way a real callback would receive it.
func connectAndCaptureState(t *testing.T, srv usecase.BoardUsecase, client *mockSvc.MockBoardClient, userID uuid.UUID) string {
	t.Helper()

	var captured string
	client.On("AuthorizationURL", mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		captured = args.String(0)
	}).Return("https://board.example.com/oauth/authorize?state=pending").Once()

	_, err := srv.ConnectURL(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, captured)

	return captured
}

func TestBoardService_ConnectURL_GeneratesUniqueStates(t *testing.T) {
	srv, _, client := newBoardFixture(t, time.Now())
	userID := uuid.New()

	first := connectAndCaptureState(t, srv, client, userID)
	second := connectAndCaptureState(t, srv, client, userID)

	assert.NotEqual(t, first, second)

	// The state value is 32 random bytes hex-encoded: opaque and URL-safe.
	assert.Len(t, first, 64)
	_, err := hex.DecodeString(first)
	assert.NoError(t, err)
	assert.Equal(t, first, url.QueryEscape(first))
}

func TestBoardService_HandleCallback(t *testing.T) {
	now := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	srv, factory, client := newBoardFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	state := connectAndCaptureState(t, srv, client, userID)

	client.On("ExchangeCode", ctx, "auth-code").Return(&entity.BoardCredential{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(time.Hour),
	}, nil)
	factory.BoardCredentials.On("Upsert", ctx, mock.MatchedBy(func(cred *entity.BoardCredential) bool {
		return cred.UserID == userID && cred.AccessToken == "access-token"
	})).Return(nil)

	require.NoError(t, srv.HandleCallback(ctx, state, "auth-code"))
}

func TestBoardService_HandleCallback_StateIsSingleUse(t *testing.T) {
	now := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	srv, factory, client := newBoardFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	state := connectAndCaptureState(t, srv, client, userID)

	client.On("ExchangeCode", ctx, "auth-code").Return(&entity.BoardCredential{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(time.Hour),
	}, nil).Once()
	factory.BoardCredentials.On("Upsert", ctx, mock.Anything).Return(nil).Once()

	require.NoError(t, srv.HandleCallback(ctx, state, "auth-code"))

	// Replaying the callback with the consumed state fails before any
	// exchange with the board.
	err := srv.HandleCallback(ctx, state, "auth-code")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid))
}

func TestBoardService_HandleCallback_UnknownState(t *testing.T) {
	srv, _, _ := newBoardFixture(t, time.Now())

	err := srv.HandleCallback(context.Background(), "never-issued", "auth-code")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid))
}

func TestBoardService_HandleCallback_ExchangeFailureKeepsNothing(t *testing.T) {
	srv, _, client := newBoardFixture(t, time.Now())
	ctx := context.Background()
	userID := uuid.New()

	state := connectAndCaptureState(t, srv, client, userID)

	client.On("ExchangeCode", ctx, "bad-code").
		Return(nil, domainerrors.ErrOAuthCodeInvalid.WrapMessage("board rejected the code"))

	err := srv.HandleCallback(ctx, state, "bad-code")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthCodeInvalid))
}

func TestBoardService_Disconnect(t *testing.T) {
	srv, factory, _ := newBoardFixture(t, time.Now())
	ctx := context.Background()
	userID := uuid.New()

	factory.BoardCredentials.On("DeleteByUserID", ctx, userID).Return(nil)

	assert.NoError(t, srv.Disconnect(ctx, userID))
}

func TestBoardService_Status(t *testing.T) {
	now := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	srv, factory, _ := newBoardFixture(t, now)
	ctx := context.Background()

	connected := uuid.New()
	unconnected := uuid.New()

	factory.BoardCredentials.On("FindByUserID", ctx, connected).Return(&entity.BoardCredential{
		UserID:    connected,
		ExpiresAt: now.Add(time.Hour),
	}, nil)
	factory.BoardCredentials.On("FindByUserID", ctx, unconnected).
		Return(nil, repository.ErrBoardCredentialNotFound)

	status, err := srv.Status(ctx, connected)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	require.NotNil(t, status.ExpiresAt)
	assert.Equal(t, now.Add(time.Hour), *status.ExpiresAt)

	status, err = srv.Status(ctx, unconnected)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Nil(t, status.ExpiresAt)
}
