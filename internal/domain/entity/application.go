// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Application is the locally-persisted record of one job application a user
// submitted through the external board. Identity is (UserID, BoardVacancyID):
// a second submission for the same vacancy is a conflict, never a silent
// overwrite. BoardApplicationID links to the board's authoritative record and
// is set once, immutable afterwards. Records are archived, never hard-deleted.
type Application struct {
	ID                 uuid.UUID         // The unique ID of the local record.
	UserID             uuid.UUID         // The user who submitted the application.
	BoardVacancyID     string            // The board's vacancy identifier; unique per user.
	BoardApplicationID string            // The board's identifier for this application, set once.
	Status             ApplicationStatus // Current local status, advanced monotonically.
	StatusChangedAt    time.Time         // When Status last changed.
	RejectedAt         *time.Time        // Set when a rejection was recorded locally; nil otherwise.
	CreatedAt          time.Time         // When the local record was created.
	UpdatedAt          time.Time         // Last modification of any field.
	ArchivedAt         *time.Time        // Soft-delete marker; nil while the record is live.
}

// Archived reports whether the record has been soft-deleted.
func (a *Application) Archived() bool {
	return a.ArchivedAt != nil
}
