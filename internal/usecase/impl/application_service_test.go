package impl

import (
	"context"
	"testing"
	"time"

	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	mockRepo "jobtrack/internal/mocks/repository"
	mockSvc "jobtrack/internal/mocks/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApplicationFixture(t *testing.T, now time.Time) (usecase.ApplicationUsecase, *mockRepo.MockRepositoryFactory) {
	t.Helper()

	txManager, factory := mockRepo.NewMockRepositoryFactory(t)
	srv := NewApplicationService(ApplicationServiceParams{
		TxManager: txManager,
		Clock:     mockSvc.NewFakeClock(now),
		Logger:    newDiscardLogger(),
	})

	return srv, factory
}

func TestApplicationService_Submit(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	srv, factory := newApplicationFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	factory.Applications.On("Create", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.UserID == userID &&
			app.BoardVacancyID == "vacancy-42" &&
			app.Status == entity.StatusSent &&
			app.StatusChangedAt.Equal(now)
	})).Return(nil)

	app, err := srv.Submit(ctx, usecase.SubmitApplicationInput{
		UserID:             userID,
		BoardVacancyID:     "vacancy-42",
		BoardApplicationID: "board-app-7",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, app.Status)
}

func TestApplicationService_Submit_DuplicateVacancy(t *testing.T) {
	srv, factory := newApplicationFixture(t, time.Now())
	ctx := context.Background()

	factory.Applications.On("Create", ctx, mock.Anything).Return(repository.ErrApplicationExists)

	_, err := srv.Submit(ctx, usecase.SubmitApplicationInput{
		UserID:         uuid.New(),
		BoardVacancyID: "vacancy-42",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateApplication))
}

func TestApplicationService_MarkRejected(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	srv, factory := newApplicationFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()
	appID := uuid.New()

	factory.Applications.On("FindByID", ctx, appID).
		Return(&entity.Application{ID: appID, UserID: userID, Status: entity.StatusViewed}, nil)
	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.Status == entity.StatusRejected &&
			app.RejectedAt != nil && app.RejectedAt.Equal(now) &&
			app.StatusChangedAt.Equal(now)
	})).Return(nil)

	updated, err := srv.MarkRejected(ctx, userID, appID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, updated.Status)
	require.NotNil(t, updated.RejectedAt)
}

func TestApplicationService_MarkRejected_AlreadyRejected(t *testing.T) {
	srv, factory := newApplicationFixture(t, time.Now())
	ctx := context.Background()
	userID := uuid.New()
	appID := uuid.New()

	// Already terminal: succeeds without an Update call.
	factory.Applications.On("FindByID", ctx, appID).
		Return(&entity.Application{ID: appID, UserID: userID, Status: entity.StatusRejected}, nil)

	updated, err := srv.MarkRejected(ctx, userID, appID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, updated.Status)
}

func TestApplicationService_MarkRejected_ForeignRecordReadsAsNotFound(t *testing.T) {
	srv, factory := newApplicationFixture(t, time.Now())
	ctx := context.Background()
	appID := uuid.New()

	factory.Applications.On("FindByID", ctx, appID).
		Return(&entity.Application{ID: appID, UserID: uuid.New(), Status: entity.StatusSent}, nil)

	_, err := srv.MarkRejected(ctx, uuid.New(), appID)
	assert.True(t, errors.Is(err, domainerrors.ErrApplicationNotFound))
}

func TestApplicationService_Archive(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	srv, factory := newApplicationFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()
	appID := uuid.New()

	factory.Applications.On("FindByID", ctx, appID).
		Return(&entity.Application{ID: appID, UserID: userID, Status: entity.StatusSent}, nil)
	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.ArchivedAt != nil && app.ArchivedAt.Equal(now)
	})).Return(nil)

	assert.NoError(t, srv.Archive(ctx, userID, appID))
}

func TestApplicationService_Archive_AlreadyArchived(t *testing.T) {
	now := time.Now()
	srv, factory := newApplicationFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()
	appID := uuid.New()

	archivedAt := now.Add(-time.Hour)
	factory.Applications.On("FindByID", ctx, appID).
		Return(&entity.Application{ID: appID, UserID: userID, ArchivedAt: &archivedAt}, nil)

	// Idempotent: no Update expected.
	assert.NoError(t, srv.Archive(ctx, userID, appID))
}

func TestApplicationService_List(t *testing.T) {
	srv, factory := newApplicationFixture(t, time.Now())
	ctx := context.Background()
	userID := uuid.New()

	stored := []*entity.Application{
		{ID: uuid.New(), UserID: userID, BoardVacancyID: "vacancy-2"},
		{ID: uuid.New(), UserID: userID, BoardVacancyID: "vacancy-1"},
	}
	factory.Applications.On("FindByUserID", ctx, userID).Return(stored, nil)

	apps, err := srv.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, stored, apps)
}
