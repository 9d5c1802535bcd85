package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"jobtrack/config"
	deliverycontext "jobtrack/internal/delivery/context"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// boardService implements the BoardUsecase interface: the authorization-code
// flow against the external board plus credential management.
type boardService struct {
	txManager  repository.TransactionManager
	client     service.BoardClient
	stateStore service.StateStore
	cfg        *config.BoardConfig
	logger     *slog.Logger
}

// BoardServiceParams holds dependencies for boardService, injected by Fx.
type BoardServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	Client     service.BoardClient
	StateStore service.StateStore
	Config     *config.Config
	Logger     *slog.Logger
}

// NewBoardService is the constructor for boardService.
func NewBoardService(params BoardServiceParams) usecase.BoardUsecase {
	return &boardService{
		txManager:  params.TxManager,
		client:     params.Client,
		stateStore: params.StateStore,
		cfg:        params.Config.Board,
		logger:     params.Logger,
	}
}

func (srv *boardService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// generateState generates a cryptographically secure random state string.
func generateState() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// ConnectURL stores a fresh one-time state value bound to the user and
// returns the board's authorization URL.
func (srv *boardService) ConnectURL(_ context.Context, userID uuid.UUID) (string, error) {
	state := generateState()
	srv.stateStore.Put(state, userID.String(), srv.cfg.StateTTL)

	return srv.client.AuthorizationURL(state), nil
}

// HandleCallback completes the authorization flow. The state is single-use:
// it is consumed on read, so a replayed callback fails on the state check
// before any code exchange happens.
func (srv *boardService) HandleCallback(ctx context.Context, state, code string) error {
	userIDValue, ok := srv.stateStore.Take(state)
	if !ok {
		srv.log(ctx).Warn("OAuth callback with unknown state")

		return domainerrors.ErrOAuthStateInvalid.WrapMessage("state not pending")
	}

	userID, err := uuid.Parse(userIDValue)
	if err != nil {
		return errors.Wrap(err, "failed to parse pending state value")
	}

	cred, err := srv.client.ExchangeCode(ctx, code)
	if err != nil {
		srv.log(ctx).Warn("Authorization code exchange failed", slog.Any("userID", userID), slog.Any("error", err))

		return err
	}
	cred.UserID = userID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.BoardCredentialRepo().Upsert(ctx, cred); err != nil {
			return errors.Wrap(err, "failed to store board credential")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to persist board credential", slog.Any("userID", userID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Board account connected", slog.Any("userID", userID))

	return nil
}

// Disconnect removes the stored credential. Disconnecting an unconnected
// account succeeds: the end state is the same.
func (srv *boardService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.BoardCredentialRepo().DeleteByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete board credential")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to disconnect board account", slog.Any("userID", userID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Board account disconnected", slog.Any("userID", userID))

	return nil
}

// Status reports the connection state without ever exposing token values.
func (srv *boardService) Status(ctx context.Context, userID uuid.UUID) (*usecase.BoardConnectionStatus, error) {
	status := &usecase.BoardConnectionStatus{}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cred, err := repoFactory.BoardCredentialRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrBoardCredentialNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to load board credential")
		}

		expiresAt := cred.ExpiresAt
		status.Connected = true
		status.ExpiresAt = &expiresAt

		return nil
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}
