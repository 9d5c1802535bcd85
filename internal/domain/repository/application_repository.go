// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"jobtrack/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for application persistence.
var (
	// ErrApplicationNotFound is returned when no matching application record exists.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrApplicationExists is returned when a second application is created
	// for the same (user, vacancy) pair.
	ErrApplicationExists = errors.New("application already exists for this vacancy")
)

// ApplicationRepository defines the operations for local application records.
type ApplicationRepository interface {
	// Create persists a new application record. A duplicate
	// (UserID, BoardVacancyID) pair yields ErrApplicationExists.
	Create(ctx context.Context, app *entity.Application) error

	// FindByID retrieves a single application by its local ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)

	// FindByBoardApplicationID locates the local record matching the board's
	// application identifier for a given user.
	FindByBoardApplicationID(ctx context.Context, userID uuid.UUID, boardApplicationID string) (*entity.Application, error)

	// FindByUserID retrieves all non-archived applications for a user,
	// newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Application, error)

	// Update modifies an existing application record.
	Update(ctx context.Context, app *entity.Application) error
}
