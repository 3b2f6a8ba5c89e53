package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the owner of tasks, settings and backups. A user signs in either
// with email and password or through Telegram.
type User struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	Email        *string `gorm:"uniqueIndex"`
	PasswordHash string
	TelegramID   *int64 `gorm:"uniqueIndex"`
	FirstName    string
	LastName     string
	Username     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
