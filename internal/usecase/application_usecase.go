package usecase

import (
	"context"

	"jobtrack/internal/domain/entity"

	"github.com/google/uuid"
)

// SubmitApplicationInput defines the data required to submit an application.
type SubmitApplicationInput struct {
	UserID             uuid.UUID
	BoardVacancyID     string
	BoardApplicationID string
}

// ApplicationUsecase manages the locally tracked application records.
type ApplicationUsecase interface {
	// Submit creates the local record for an application the user filed on
	// the board. A second submission for the same vacancy is a conflict.
	Submit(ctx context.Context, input SubmitApplicationInput) (*entity.Application, error)

	// List returns the user's non-archived applications, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Application, error)

	// MarkRejected records an employer rejection observed by the user,
	// advancing the record to its terminal REJECTED state.
	MarkRejected(ctx context.Context, userID, applicationID uuid.UUID) (*entity.Application, error)

	// Archive soft-deletes a record. Archived records keep their history and
	// are excluded from listings and reconciliation.
	Archive(ctx context.Context, userID, applicationID uuid.UUID) error
}
