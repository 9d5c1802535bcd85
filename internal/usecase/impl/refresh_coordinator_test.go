package impl

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobtrack/config"
	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	mockSvc "jobtrack/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// credStore is a concurrency-safe in-memory BoardCredentialRepository. The
// coordinator tests exercise real goroutine interleavings, so the store has
// to behave like a database rather than a scripted mock.
type credStore struct {
	mu   sync.Mutex
	cred *entity.BoardCredential
}

func (s *credStore) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.BoardCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil || s.cred.UserID != userID {
		return nil, repository.ErrBoardCredentialNotFound
	}
	copied := *s.cred

	return &copied, nil
}

func (s *credStore) Upsert(_ context.Context, cred *entity.BoardCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *cred
	s.cred = &copied

	return nil
}

func (s *credStore) DeleteByUserID(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil

	return nil
}

func (s *credStore) ListConnectedUserIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		return nil, nil
	}

	return []uuid.UUID{s.cred.UserID}, nil
}

// credFactory exposes only the credential repository; the coordinator never
// touches the others.
type credFactory struct {
	creds *credStore
}

func (f *credFactory) UserRepo() repository.UserRepository                   { return nil }
func (f *credFactory) AuthRepo() repository.AuthRepository                   { return nil }
func (f *credFactory) RefreshTokenRepo() repository.RefreshTokenRepository   { return nil }
func (f *credFactory) ApplicationRepo() repository.ApplicationRepository     { return nil }
func (f *credFactory) BoardCredentialRepo() repository.BoardCredentialRepository {
	return f.creds
}

type passthroughTxManager struct {
	factory repository.RepositoryFactory
}

func (m *passthroughTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// countingBoardClient counts Refresh calls and serves a scripted result.
type countingBoardClient struct {
	refreshCalls atomic.Int64
	delay        time.Duration
	result       func() (*entity.BoardCredential, error)
}

func (c *countingBoardClient) AuthorizationURL(string) string { return "" }

func (c *countingBoardClient) ExchangeCode(context.Context, string) (*entity.BoardCredential, error) {
	return nil, errors.New("not used")
}

func (c *countingBoardClient) Refresh(context.Context, string) (*entity.BoardCredential, error) {
	c.refreshCalls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	return c.result()
}

func (c *countingBoardClient) ListApplications(context.Context, string) ([]service.BoardApplication, error) {
	return nil, errors.New("not used")
}

func newCoordinatorFixture(t *testing.T, client service.BoardClient, store *credStore, clock service.Clock) *refreshCoordinator {
	t.Helper()

	cfg := &config.Config{Board: &config.BoardConfig{ExpiryMargin: 5 * time.Minute}}
	coordinator := NewRefreshCoordinator(RefreshCoordinatorParams{
		TxManager: &passthroughTxManager{factory: &credFactory{creds: store}},
		Client:    client,
		Clock:     clock,
		Config:    cfg,
		Logger:    newDiscardLogger(),
	})

	return coordinator.(*refreshCoordinator)
}

func TestRefreshCoordinator_FastPathSkipsNetwork(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "live-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(time.Hour),
	}}
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		return nil, errors.New("must not be called")
	}}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	token, err := coordinator.GetValidAccessToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "live-token", token)
	assert.Zero(t, client.refreshCalls.Load())
}

func TestRefreshCoordinator_SingleFlightUnderConcurrency(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(time.Minute), // inside the 5 minute margin
	}}
	client := &countingBoardClient{
		delay: 30 * time.Millisecond,
		result: func() (*entity.BoardCredential, error) {
			return &entity.BoardCredential{
				AccessToken:  "fresh-token",
				RefreshToken: "rotated-refresh-token",
				ExpiresAt:    now.Add(time.Hour),
			}, nil
		},
	}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	const callers = 25
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = coordinator.GetValidAccessToken(context.Background(), userID)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh-token", tokens[i])
	}

	// Every caller hit the margin window simultaneously, yet exactly one
	// refresh request went to the board.
	assert.Equal(t, int64(1), client.refreshCalls.Load())

	stored, err := store.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh-token", stored.RefreshToken)
}

func TestRefreshCoordinator_RefreshInsideMargin(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	// Not yet expired, but within the margin: must refresh anyway.
	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(2 * time.Minute),
	}}
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		return &entity.BoardCredential{
			AccessToken:  "fresh-token",
			RefreshToken: "rotated",
			ExpiresAt:    now.Add(time.Hour),
		}, nil
	}}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	token, err := coordinator.GetValidAccessToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int64(1), client.refreshCalls.Load())
}

func TestRefreshCoordinator_WaiterTimeoutDoesNotAbortFlight(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(-time.Minute),
	}}
	client := &countingBoardClient{
		delay: 200 * time.Millisecond,
		result: func() (*entity.BoardCredential, error) {
			return &entity.BoardCredential{
				AccessToken:  "fresh-token",
				RefreshToken: "rotated",
				ExpiresAt:    now.Add(time.Hour),
			}, nil
		},
	}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	// The caller gives up long before the refresh finishes.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := coordinator.GetValidAccessToken(ctx, userID)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The flight keeps running on its detached context and persists the
	// rotated credential anyway.
	require.Eventually(t, func() bool {
		stored, err := store.FindByUserID(context.Background(), userID)

		return err == nil && stored.AccessToken == "fresh-token" && stored.RefreshToken == "rotated"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), client.refreshCalls.Load())

	// The next caller reads the refreshed credential without another flight.
	token, err := coordinator.GetValidAccessToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int64(1), client.refreshCalls.Load())
}

func TestRefreshCoordinator_DeadRefreshTokenClearsCredential(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "stale-token",
		RefreshToken: "dead-refresh-token",
		ExpiresAt:    now.Add(-time.Minute),
	}}
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		return nil, domainerrors.ErrBoardReauthRequired.WrapMessage("board reported invalid_grant")
	}}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	_, err := coordinator.GetValidAccessToken(context.Background(), userID)
	assert.True(t, errors.Is(err, domainerrors.ErrBoardReauthRequired))

	// The credential is gone, so the next call fails fast on the local
	// check without another request to the board.
	_, err = coordinator.GetValidAccessToken(context.Background(), userID)
	assert.True(t, errors.Is(err, domainerrors.ErrBoardNotConnected))
	assert.Equal(t, int64(1), client.refreshCalls.Load())
}

func TestRefreshCoordinator_TransientFailureKeepsCredential(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userID := uuid.New()

	store := &credStore{cred: &entity.BoardCredential{
		UserID:       userID,
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    now.Add(-time.Minute),
	}}

	var failing atomic.Bool
	failing.Store(true)
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		if failing.Load() {
			return nil, domainerrors.ErrBoardUnavailable.WrapMessage("token endpoint returned 503")
		}

		return &entity.BoardCredential{
			AccessToken:  "fresh-token",
			RefreshToken: "rotated",
			ExpiresAt:    now.Add(time.Hour),
		}, nil
	}}

	coordinator := newCoordinatorFixture(t, client, store, clock)

	_, err := coordinator.GetValidAccessToken(context.Background(), userID)
	assert.True(t, errors.Is(err, domainerrors.ErrBoardUnavailable))

	// The credential survived the outage, so a later call retries and wins.
	failing.Store(false)
	token, err := coordinator.GetValidAccessToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int64(2), client.refreshCalls.Load())
}

func TestRefreshCoordinator_NotConnected(t *testing.T) {
	clock := mockSvc.NewFakeClock(time.Now())
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		return nil, errors.New("must not be called")
	}}

	coordinator := newCoordinatorFixture(t, client, &credStore{}, clock)

	_, err := coordinator.GetValidAccessToken(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrBoardNotConnected))
	assert.Zero(t, client.refreshCalls.Load())
}

func TestRefreshCoordinator_IndependentUsersDoNotShareFlights(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	clock := mockSvc.NewFakeClock(now)
	userA := uuid.New()
	userB := uuid.New()

	// Separate coordinators share nothing here, so use one coordinator with a
	// store that serves either user.
	storeA := &credStore{cred: &entity.BoardCredential{
		UserID:       userA,
		AccessToken:  "live-a",
		RefreshToken: "refresh-a",
		ExpiresAt:    now.Add(time.Hour),
	}}
	client := &countingBoardClient{result: func() (*entity.BoardCredential, error) {
		return nil, errors.New("must not be called")
	}}
	coordinator := newCoordinatorFixture(t, client, storeA, clock)

	// User A has a live credential; user B is not connected. Neither blocks
	// nor affects the other.
	tokenA, errA := coordinator.GetValidAccessToken(context.Background(), userA)
	_, errB := coordinator.GetValidAccessToken(context.Background(), userB)

	require.NoError(t, errA)
	assert.Equal(t, "live-a", tokenA)
	assert.Error(t, errB)
}
