package impl

import (
	"context"
	"log/slog"
	"sync"

	"jobtrack/config"
	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// refreshFlight is one in-progress refresh for one user. Waiters block on
// done and then read token/err; both are written exactly once before done
// is closed.
type refreshFlight struct {
	done  chan struct{}
	token string
	err   error
}

// refreshCoordinator implements CredentialUsecase. At most one board refresh
// request is in flight per user at any moment: the first caller to find the
// access token inside the expiry margin performs the refresh, every
// concurrent caller for the same user waits for that result. Flights are
// keyed per user, so user A's refresh never blocks user B.
type refreshCoordinator struct {
	txManager repository.TransactionManager
	client    service.BoardClient
	clock     service.Clock
	cfg       *config.BoardConfig
	logger    *slog.Logger

	mu      sync.Mutex
	flights map[uuid.UUID]*refreshFlight
}

// RefreshCoordinatorParams holds dependencies for refreshCoordinator, injected by Fx.
type RefreshCoordinatorParams struct {
	fx.In

	TxManager repository.TransactionManager
	Client    service.BoardClient
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewRefreshCoordinator is the constructor for refreshCoordinator.
func NewRefreshCoordinator(params RefreshCoordinatorParams) usecase.CredentialUsecase {
	return &refreshCoordinator{
		txManager: params.TxManager,
		client:    params.Client,
		clock:     params.Clock,
		cfg:       params.Config.Board,
		logger:    params.Logger,
		flights:   make(map[uuid.UUID]*refreshFlight),
	}
}

func (rc *refreshCoordinator) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, rc.logger)
}

// GetValidAccessToken returns an access token valid beyond the expiry margin,
// refreshing it first when needed.
func (rc *refreshCoordinator) GetValidAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	cred, err := rc.loadCredential(ctx, userID)
	if err != nil {
		return "", err
	}

	// Fast path: no lock held, no network touched.
	if !cred.ExpiringSoon(rc.clock.Now(), rc.cfg.ExpiryMargin) {
		return cred.AccessToken, nil
	}

	flight, started := rc.joinFlight(userID)
	if started {
		rc.runFlight(ctx, userID, flight)
	}

	select {
	case <-flight.done:
		return flight.token, flight.err
	case <-ctx.Done():
		// This caller gives up, but the flight keeps running on its detached
		// context so the waiters that remain still get a result.
		return "", errors.Wrap(ctx.Err(), "gave up waiting for token refresh")
	}
}

// joinFlight returns the in-progress flight for the user, creating one when
// none exists. The second return reports whether this caller started it and
// is therefore responsible for running it.
func (rc *refreshCoordinator) joinFlight(userID uuid.UUID) (*refreshFlight, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if flight, ok := rc.flights[userID]; ok {
		return flight, false
	}

	flight := &refreshFlight{done: make(chan struct{})}
	rc.flights[userID] = flight

	return flight, true
}

// runFlight performs the refresh and publishes the result. It runs on a
// context detached from the starting caller: a refreshed credential benefits
// every waiter, so one caller's timeout must not abort the shared work.
func (rc *refreshCoordinator) runFlight(ctx context.Context, userID uuid.UUID, flight *refreshFlight) {
	detached := context.WithoutCancel(ctx)

	go func() {
		token, err := rc.refresh(detached, userID)

		flight.token = token
		flight.err = err

		rc.mu.Lock()
		delete(rc.flights, userID)
		rc.mu.Unlock()

		close(flight.done)
	}()
}

// refresh re-reads the credential and, if still stale, performs the token
// exchange and persists the result. The re-read handles the caller that lost
// the race to an immediately preceding flight: it finds a fresh credential
// and returns without a network call.
func (rc *refreshCoordinator) refresh(ctx context.Context, userID uuid.UUID) (string, error) {
	cred, err := rc.loadCredential(ctx, userID)
	if err != nil {
		return "", err
	}
	if !cred.ExpiringSoon(rc.clock.Now(), rc.cfg.ExpiryMargin) {
		return cred.AccessToken, nil
	}

	fresh, err := rc.client.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrBoardReauthRequired) {
			// The refresh token is dead. Drop the credential so every later
			// call fails fast on the missing-credential check instead of
			// hammering the board with doomed refresh attempts.
			rc.log(ctx).Warn("Board refresh token rejected, clearing credential", slog.Any("userID", userID))
			if clearErr := rc.clearCredential(ctx, userID); clearErr != nil {
				rc.log(ctx).Error("Failed to clear dead board credential", slog.Any("userID", userID), slog.Any("error", clearErr))
			}

			return "", err
		}

		// Transient failure: the stored credential stays untouched so the
		// next call can retry the refresh.
		rc.log(ctx).Warn("Board token refresh failed", slog.Any("userID", userID), slog.Any("error", err))

		return "", err
	}

	fresh.UserID = userID
	err = rc.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.BoardCredentialRepo().Upsert(ctx, fresh)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to persist refreshed board credential")
	}

	rc.log(ctx).Debug("Board access token refreshed", slog.Any("userID", userID))

	return fresh.AccessToken, nil
}

func (rc *refreshCoordinator) loadCredential(ctx context.Context, userID uuid.UUID) (*entity.BoardCredential, error) {
	var cred *entity.BoardCredential
	err := rc.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		stored, err := repoFactory.BoardCredentialRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrBoardCredentialNotFound) {
				return domainerrors.ErrBoardNotConnected.WrapMessage("no stored board credential")
			}

			return errors.Wrap(err, "failed to load board credential")
		}
		cred = stored

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cred, nil
}

func (rc *refreshCoordinator) clearCredential(ctx context.Context, userID uuid.UUID) error {
	return rc.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.BoardCredentialRepo().DeleteByUserID(ctx, userID)
	})
}
