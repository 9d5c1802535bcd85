package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationModel mirrors the 'applications' table. The unique index on
// (user_id, board_vacancy_id) enforces the one-application-per-vacancy rule
// at the database level, closing the race between concurrent submissions.
type ApplicationModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_vacancy"`
	BoardVacancyID     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_applications_user_vacancy"`
	BoardApplicationID string    `gorm:"type:varchar(255);not null;index"`
	Status             string    `gorm:"type:varchar(20);not null"`
	StatusChangedAt    time.Time `gorm:"not null"`
	RejectedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ArchivedAt         *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (ApplicationModel) TableName() string {
	return "applications"
}
