package impl

import (
	"context"
	"log/slog"

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

// applicationService implements the ApplicationUsecase interface.
type applicationService struct {
	txManager repository.TransactionManager
	clock     service.Clock
	logger    *slog.Logger
}

// ApplicationServiceParams holds dependencies for applicationService, injected by Fx.
type ApplicationServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewApplicationService is the constructor for applicationService.
func NewApplicationService(params ApplicationServiceParams) usecase.ApplicationUsecase {
	return &applicationService{
		txManager: params.TxManager,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

func (srv *applicationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit creates the local record for an application the user filed on the
// board. The database's unique (user, vacancy) index is the final arbiter:
// two concurrent submissions cannot both succeed.
func (srv *applicationService) Submit(ctx context.Context, input usecase.SubmitApplicationInput) (*entity.Application, error) {
	now := srv.clock.Now()
	app := &entity.Application{
		UserID:             input.UserID,
		BoardVacancyID:     input.BoardVacancyID,
		BoardApplicationID: input.BoardApplicationID,
		Status:             entity.StatusSent,
		StatusChangedAt:    now,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.ApplicationRepo().Create(ctx, app); err != nil {
			if errors.Is(err, repository.ErrApplicationExists) {
				return domainerrors.ErrDuplicateApplication.WrapMessage("vacancy already applied to")
			}

			return errors.Wrap(err, "failed to create application")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to submit application",
			slog.Any("userID", input.UserID),
			slog.String("vacancyID", input.BoardVacancyID),
			slog.Any("error", err),
		)

		return nil, err
	}

	srv.log(ctx).Info("Application submitted",
		slog.Any("userID", input.UserID),
		slog.String("vacancyID", input.BoardVacancyID),
		slog.Any("applicationID", app.ID),
	)

	return app, nil
}

// List returns the user's non-archived applications, newest first.
func (srv *applicationService) List(ctx context.Context, userID uuid.UUID) ([]*entity.Application, error) {
	var apps []*entity.Application

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.ApplicationRepo().FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list applications")
		}
		apps = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// MarkRejected records an employer rejection the user observed outside the
// board data. REJECTED is terminal, so the transition always wins over
// whatever a later sync pass reports.
func (srv *applicationService) MarkRejected(ctx context.Context, userID, applicationID uuid.UUID) (*entity.Application, error) {
	var updated *entity.Application

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appRepo := repoFactory.ApplicationRepo()

		app, err := srv.loadOwnedApplication(ctx, appRepo, userID, applicationID)
		if err != nil {
			return err
		}

		if app.Status == entity.StatusRejected {
			// Already rejected: nothing to record, and no error either.
			updated = app

			return nil
		}

		now := srv.clock.Now()
		app.Status = entity.StatusRejected
		app.StatusChangedAt = now
		app.RejectedAt = &now

		if err := appRepo.Update(ctx, app); err != nil {
			return errors.Wrap(err, "failed to record rejection")
		}
		updated = app

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to mark application rejected", slog.Any("applicationID", applicationID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Application marked rejected", slog.Any("applicationID", applicationID))

	return updated, nil
}

// Archive soft-deletes a record by stamping ArchivedAt.
func (srv *applicationService) Archive(ctx context.Context, userID, applicationID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appRepo := repoFactory.ApplicationRepo()

		app, err := srv.loadOwnedApplication(ctx, appRepo, userID, applicationID)
		if err != nil {
			return err
		}

		if app.Archived() {
			return nil
		}

		now := srv.clock.Now()
		app.ArchivedAt = &now

		if err := appRepo.Update(ctx, app); err != nil {
			return errors.Wrap(err, "failed to archive application")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to archive application", slog.Any("applicationID", applicationID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Application archived", slog.Any("applicationID", applicationID))

	return nil
}

// loadOwnedApplication fetches an application and verifies ownership.
// A foreign record reads as not-found so the existence of other users'
// applications never leaks.
func (srv *applicationService) loadOwnedApplication(ctx context.Context, appRepo repository.ApplicationRepository, userID, applicationID uuid.UUID) (*entity.Application, error) {
	app, err := appRepo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, domainerrors.ErrApplicationNotFound.WrapMessage("no such application")
		}

		return nil, errors.Wrap(err, "failed to load application")
	}
	if app.UserID != userID {
		return nil, domainerrors.ErrApplicationNotFound.WrapMessage("no such application")
	}

	return app, nil
}
