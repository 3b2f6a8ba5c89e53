package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Backup is an immutable point-in-time copy of a user's tasks and settings.
// Field order matches the exported document.
type Backup struct {
	ID           string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string        `gorm:"index;type:varchar(36)" json:"user_id"`
	BackupName   string        `json:"backup_name"`
	TasksData    TaskSnapshots `gorm:"type:text" json:"tasks_data"`
	SettingsData Document      `gorm:"type:text" json:"settings_data"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
}

func (b *Backup) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TaskSnapshot is a task as it was when the backup was taken.
type TaskSnapshot struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsUrgent    bool      `json:"is_urgent"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
