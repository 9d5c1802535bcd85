package impl

import (
	"context"
	"testing"
	"time"

	"jobtrack/internal/domain/entity"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	mockRepo "jobtrack/internal/mocks/repository"
	mockSvc "jobtrack/internal/mocks/service"
	mockUC "jobtrack/internal/mocks/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSyncFixture(t *testing.T, now time.Time) (*syncService, *mockRepo.MockRepositoryFactory, *mockUC.MockCredentialUsecase, *mockSvc.MockBoardClient) {
	t.Helper()

	txManager, factory := mockRepo.NewMockRepositoryFactory(t)
	credentials := mockUC.NewMockCredentialUsecase(t)
	client := mockSvc.NewMockBoardClient(t)

	srv := NewSyncService(SyncServiceParams{
		TxManager:   txManager,
		Credentials: credentials,
		Client:      client,
		Clock:       mockSvc.NewFakeClock(now),
		Logger:      newDiscardLogger(),
	})

	return srv.(*syncService), factory, credentials, client
}

func localApplication(userID uuid.UUID, boardAppID string, status entity.ApplicationStatus) *entity.Application {
	return &entity.Application{
		ID:                 uuid.New(),
		UserID:             userID,
		BoardVacancyID:     "vacancy-" + boardAppID,
		BoardApplicationID: boardAppID,
		Status:             status,
	}
}

func TestSyncService_AdvancesStatuses(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	credentials.On("GetValidAccessToken", ctx, userID).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{
		{ID: "app-1", VacancyID: "vacancy-app-1", State: "viewed"},
		{ID: "app-2", VacancyID: "vacancy-app-2", State: "sent"},
	}, nil)

	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-1").
		Return(localApplication(userID, "app-1", entity.StatusSent), nil)
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-2").
		Return(localApplication(userID, "app-2", entity.StatusSent), nil)

	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.BoardApplicationID == "app-1" &&
			app.Status == entity.StatusViewed &&
			app.StatusChangedAt.Equal(now)
	})).Return(nil)

	summary, err := srv.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
}

func TestSyncService_SecondPassIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	credentials.On("GetValidAccessToken", ctx, userID).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{
		{ID: "app-1", VacancyID: "vacancy-app-1", State: "viewed"},
	}, nil)

	// The local record already carries the board's status: no Update expected.
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-1").
		Return(localApplication(userID, "app-1", entity.StatusViewed), nil)

	summary, err := srv.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
}

func TestSyncService_NeverRegressesLocalStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	credentials.On("GetValidAccessToken", ctx, userID).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{
		{ID: "app-1", VacancyID: "vacancy-app-1", State: "viewed"},
	}, nil)

	// Locally rejected; the board still says "viewed". Local wins and the
	// conflicting record counts as skipped.
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-1").
		Return(localApplication(userID, "app-1", entity.StatusRejected), nil)

	summary, err := srv.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSyncService_SkipsProblemRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	archived := localApplication(userID, "app-archived", entity.StatusSent)
	archivedAt := now.Add(-24 * time.Hour)
	archived.ArchivedAt = &archivedAt

	credentials.On("GetValidAccessToken", ctx, userID).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{
		{ID: "", State: "viewed"},                                   // no application id
		{ID: "app-weird", State: "under_committee_review"},          // unmapped state
		{ID: "app-untracked", State: "viewed"},                      // no local record
		{ID: "app-archived", State: "viewed"},                       // archived locally
		{ID: "app-ok", VacancyID: "vacancy-app-ok", State: "viewed"}, // the one good record
	}, nil)

	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-untracked").
		Return(nil, repository.ErrApplicationNotFound)
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-archived").
		Return(archived, nil)
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-ok").
		Return(localApplication(userID, "app-ok", entity.StatusSent), nil)
	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.BoardApplicationID == "app-ok" && app.Status == entity.StatusViewed
	})).Return(nil)

	summary, err := srv.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Synced)
	assert.Equal(t, 1, summary.Updated)
	// Missing id, unmapped state, untracked and archived records all count
	// as skipped; none of them fails the batch.
	assert.Equal(t, 4, summary.Skipped)
}

func TestSyncService_UpdateFailureDoesNotAbortBatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()
	userID := uuid.New()

	credentials.On("GetValidAccessToken", ctx, userID).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{
		{ID: "app-1", State: "viewed"},
		{ID: "app-2", State: "viewed"},
	}, nil)

	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-1").
		Return(localApplication(userID, "app-1", entity.StatusSent), nil)
	factory.Applications.On("FindByBoardApplicationID", ctx, userID, "app-2").
		Return(localApplication(userID, "app-2", entity.StatusSent), nil)

	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.BoardApplicationID == "app-1"
	})).Return(errors.New("connection reset"))
	factory.Applications.On("Update", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.BoardApplicationID == "app-2"
	})).Return(nil)

	summary, err := srv.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSyncService_TokenFailurePropagates(t *testing.T) {
	srv, _, credentials, _ := newSyncFixture(t, time.Now())
	ctx := context.Background()
	userID := uuid.New()

	credentials.On("GetValidAccessToken", ctx, userID).Return("", errors.New("board unreachable"))

	summary, err := srv.Reconcile(ctx, userID)
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestSyncService_ReconcileAllIsolatesFailingUsers(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, factory, credentials, client := newSyncFixture(t, now)
	ctx := context.Background()

	healthy := uuid.New()
	broken := uuid.New()

	factory.BoardCredentials.On("ListConnectedUserIDs", ctx).Return([]uuid.UUID{broken, healthy}, nil)

	// The first user's token refresh fails; the second user still gets a pass.
	credentials.On("GetValidAccessToken", ctx, broken).Return("", errors.New("board unreachable"))
	credentials.On("GetValidAccessToken", ctx, healthy).Return("access-token", nil)
	client.On("ListApplications", ctx, "access-token").Return([]service.BoardApplication{}, nil)

	err := srv.ReconcileAll(ctx)
	require.NoError(t, err)
}
