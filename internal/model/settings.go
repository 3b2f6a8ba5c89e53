package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Settings holds the per-user application settings document.
type Settings struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string    `gorm:"uniqueIndex;type:varchar(36)" json:"user_id"`
	SettingsData Document  `gorm:"type:text" json:"settings_data"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Settings) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
