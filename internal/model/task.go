package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task represents a single item in the task list.
type Task struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"index;type:varchar(36)" json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsUrgent    bool      `gorm:"default:false" json:"is_urgent"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Snapshot returns a value copy of the task suitable for storing inside a backup.
func (t Task) Snapshot() TaskSnapshot {
	return TaskSnapshot{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		IsUrgent:    t.IsUrgent,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
