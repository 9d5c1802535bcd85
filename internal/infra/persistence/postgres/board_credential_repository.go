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
	"gorm.io/gorm/clause"
)

// boardCredentialRepository implements the domain.BoardCredentialRepository interface.
type boardCredentialRepository struct {
	db *gorm.DB
}

// NewBoardCredentialRepository is the constructor for boardCredentialRepository.
func NewBoardCredentialRepository(db *gorm.DB) repository.BoardCredentialRepository {
	return &boardCredentialRepository{db: db}
}

// FindByUserID retrieves the stored credential for a user.
func (repo *boardCredentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.BoardCredential, error) {
	var credM model.BoardCredentialModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&credM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBoardCredentialNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toBoardCredentialDomain(&credM), nil
}

// Upsert stores the credential, replacing any previous row for the user.
// ON CONFLICT makes the token-pair swap a single atomic statement.
func (repo *boardCredentialRepository) Upsert(ctx context.Context, cred *entity.BoardCredential) error {
	credM := fromBoardCredentialDomain(cred)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(credM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to store board credential")
	}

	cred.CreatedAt = credM.CreatedAt
	cred.UpdatedAt = credM.UpdatedAt

	return nil
}

// DeleteByUserID removes the stored credential, disconnecting the account.
// Deleting an absent credential is not an error: the end state is the same.
func (repo *boardCredentialRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.BoardCredentialModel{}).Error; err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ListConnectedUserIDs returns the IDs of all users holding a credential.
func (repo *boardCredentialRepository) ListConnectedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	if err := repo.db.WithContext(ctx).
		Model(&model.BoardCredentialModel{}).
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return userIDs, nil
}

// --- Mapper Functions ---

func toBoardCredentialDomain(data *model.BoardCredentialModel) *entity.BoardCredential {
	if data == nil {
		return nil
	}

	return &entity.BoardCredential{
		UserID:       data.UserID,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    data.ExpiresAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromBoardCredentialDomain(data *entity.BoardCredential) *model.BoardCredentialModel {
	if data == nil {
		return nil
	}

	return &model.BoardCredentialModel{
		UserID:       data.UserID,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    data.ExpiresAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
