package postgres

import (
	"context"

	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// applicationRepository implements the domain.ApplicationRepository interface.
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository is the constructor for applicationRepository.
func NewApplicationRepository(db *gorm.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create persists a new application record. The unique (user_id,
// board_vacancy_id) index turns a concurrent double-submit into
// ErrApplicationExists instead of a second row.
func (repo *applicationRepository) Create(ctx context.Context, app *entity.Application) error {
	appM := fromApplicationDomain(app)

	if err := repo.db.WithContext(ctx).Create(appM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrApplicationExists
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create application")
	}

	app.ID = appM.ID
	app.CreatedAt = appM.CreatedAt
	app.UpdatedAt = appM.UpdatedAt

	return nil
}

// FindByID retrieves a single application by its local ID.
func (repo *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var appM model.ApplicationModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&appM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrApplicationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toApplicationDomain(&appM), nil
}

// FindByBoardApplicationID locates the local record matching the board's
// application identifier for a given user.
func (repo *applicationRepository) FindByBoardApplicationID(ctx context.Context, userID uuid.UUID, boardApplicationID string) (*entity.Application, error) {
	var appM model.ApplicationModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND board_application_id = ?", userID, boardApplicationID).
		First(&appM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrApplicationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toApplicationDomain(&appM), nil
}

// FindByUserID retrieves all non-archived applications for a user, newest first.
func (repo *applicationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Application, error) {
	var appModels []*model.ApplicationModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND archived_at IS NULL", userID).
		Order("created_at DESC").
		Find(&appModels).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	apps := make([]*entity.Application, 0, len(appModels))
	for _, appM := range appModels {
		apps = append(apps, toApplicationDomain(appM))
	}

	return apps, nil
}

// Update modifies an existing application record.
func (repo *applicationRepository) Update(ctx context.Context, app *entity.Application) error {
	appM := fromApplicationDomain(app)

	result := repo.db.WithContext(ctx).
		Model(&model.ApplicationModel{}).
		Where("id = ?", appM.ID).
		Updates(map[string]any{
			"board_application_id": appM.BoardApplicationID,
			"status":               appM.Status,
			"status_changed_at":    appM.StatusChangedAt,
			"rejected_at":          appM.RejectedAt,
			"archived_at":          appM.ArchivedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update application")
	}
	if result.RowsAffected == 0 {
		return repository.ErrApplicationNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toApplicationDomain(data *model.ApplicationModel) *entity.Application {
	if data == nil {
		return nil
	}

	return &entity.Application{
		ID:                 data.ID,
		UserID:             data.UserID,
		BoardVacancyID:     data.BoardVacancyID,
		BoardApplicationID: data.BoardApplicationID,
		Status:             entity.ApplicationStatus(data.Status),
		StatusChangedAt:    data.StatusChangedAt,
		RejectedAt:         data.RejectedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
		ArchivedAt:         data.ArchivedAt,
	}
}

func fromApplicationDomain(data *entity.Application) *model.ApplicationModel {
	if data == nil {
		return nil
	}

	return &model.ApplicationModel{
		ID:                 data.ID,
		UserID:             data.UserID,
		BoardVacancyID:     data.BoardVacancyID,
		BoardApplicationID: data.BoardApplicationID,
		Status:             data.Status.String(),
		StatusChangedAt:    data.StatusChangedAt,
		RejectedAt:         data.RejectedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
		ArchivedAt:         data.ArchivedAt,
	}
}
