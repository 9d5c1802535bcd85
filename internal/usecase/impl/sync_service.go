package impl

import (
	"context"
	"log/slog"

	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/domain/entity"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// syncService implements the SyncUsecase interface. It pulls the user's
// application records from the board and advances local statuses, never
// regressing them: local state is a high-water mark, so re-running a pass
// over the same board data is a no-op.
type syncService struct {
	txManager   repository.TransactionManager
	credentials usecase.CredentialUsecase
	client      service.BoardClient
	clock       service.Clock
	logger      *slog.Logger
}

// SyncServiceParams holds dependencies for syncService, injected by Fx.
type SyncServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	Credentials usecase.CredentialUsecase
	Client      service.BoardClient
	Clock       service.Clock
	Logger      *slog.Logger
}

// NewSyncService is the constructor for syncService.
func NewSyncService(params SyncServiceParams) usecase.SyncUsecase {
	return &syncService{
		txManager:   params.TxManager,
		credentials: params.Credentials,
		client:      params.Client,
		clock:       params.Clock,
		logger:      params.Logger,
	}
}

func (srv *syncService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Reconcile fetches the user's board applications and advances matching local
// records. Each record is processed in isolation: one malformed or failing
// record is counted and skipped, the rest of the batch continues.
func (srv *syncService) Reconcile(ctx context.Context, userID uuid.UUID) (*usecase.SyncSummary, error) {
	accessToken, err := srv.credentials.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain board access token")
	}

	records, err := srv.client.ListApplications(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list board applications")
	}

	summary := &usecase.SyncSummary{}
	for _, record := range records {
		summary.Synced++

		outcome := srv.reconcileRecord(ctx, userID, record)
		switch outcome {
		case recordUpdated:
			summary.Updated++
		case recordSkipped:
			summary.Skipped++
		case recordUnchanged:
			// Already in sync, nothing to count.
		}
	}

	srv.log(ctx).Info("Reconciliation pass finished",
		slog.Any("userID", userID),
		slog.Int("synced", summary.Synced),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

type recordOutcome int

const (
	recordUnchanged recordOutcome = iota
	recordUpdated
	recordSkipped
)

// reconcileRecord applies one board record to the matching local application.
func (srv *syncService) reconcileRecord(ctx context.Context, userID uuid.UUID, record service.BoardApplication) recordOutcome {
	if record.ID == "" {
		srv.log(ctx).Warn("Board record without an application id", slog.Any("userID", userID))

		return recordSkipped
	}

	mapped, known := entity.MapBoardState(record.State)
	if !known {
		// An unmapped board state is an explicit no-change, never a guess.
		srv.log(ctx).Debug("Unmapped board state, leaving record untouched",
			slog.Any("userID", userID),
			slog.String("boardApplicationID", record.ID),
			slog.String("state", record.State),
		)

		return recordSkipped
	}

	outcome := recordSkipped
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appRepo := repoFactory.ApplicationRepo()

		app, err := appRepo.FindByBoardApplicationID(ctx, userID, record.ID)
		if err != nil {
			if errors.Is(err, repository.ErrApplicationNotFound) {
				// The board knows an application we never tracked. Log it;
				// fabricating local records is not the sync engine's job.
				srv.log(ctx).Warn("Board application has no local record",
					slog.Any("userID", userID),
					slog.String("boardApplicationID", record.ID),
				)

				return nil
			}

			return errors.Wrap(err, "failed to load application")
		}

		if app.Archived() {
			return nil
		}

		if app.Status == mapped {
			outcome = recordUnchanged

			return nil
		}

		if !app.Status.CanAdvanceTo(mapped) {
			// The board reports something vaguer than what we already know.
			// Keep the local value; the conflict is logged, not resolved.
			srv.log(ctx).Warn("Board state conflicts with local status, keeping local",
				slog.Any("userID", userID),
				slog.String("boardApplicationID", record.ID),
				slog.String("local", app.Status.String()),
				slog.String("board", mapped.String()),
			)

			return nil
		}

		app.Status = mapped
		app.StatusChangedAt = srv.clock.Now()
		if err := appRepo.Update(ctx, app); err != nil {
			return errors.Wrap(err, "failed to advance application status")
		}
		outcome = recordUpdated

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to reconcile board record",
			slog.Any("userID", userID),
			slog.String("boardApplicationID", record.ID),
			slog.Any("error", err),
		)

		return recordSkipped
	}

	return outcome
}

// ReconcileAll runs one pass for every connected user. A failing user is
// logged and skipped; the others still get their pass.
func (srv *syncService) ReconcileAll(ctx context.Context) error {
	var userIDs []uuid.UUID
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		ids, err := repoFactory.BoardCredentialRepo().ListConnectedUserIDs(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list connected users")
		}
		userIDs = ids

		return nil
	})
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "reconciliation aborted")
		}

		if _, err := srv.Reconcile(ctx, userID); err != nil {
			srv.log(ctx).Error("Reconciliation failed for user", slog.Any("userID", userID), slog.Any("error", err))
		}
	}

	return nil
}
