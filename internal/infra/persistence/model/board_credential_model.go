package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardCredentialModel mirrors the 'board_credentials' table. UserID is the
// primary key: at most one credential per user, replaced atomically on
// refresh so readers never see a half-updated token pair.
type BoardCredentialModel struct {
	UserID       uuid.UUID `gorm:"type:uuid;primary_key"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (BoardCredentialModel) TableName() string {
	return "board_credentials"
}
