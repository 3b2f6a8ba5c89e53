package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-vault/internal/model"
)

// SettingsRepository manages the single settings row of each user.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) FindByUser(ctx context.Context, userID string) (*model.Settings, error) {
	var settings model.Settings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert updates the user's settings document in place, or creates the row on first write.
func (r *SettingsRepository) Upsert(ctx context.Context, userID string, doc model.Document) (*model.Settings, error) {
	if doc == nil {
		doc = model.Document{}
	}

	var settings model.Settings
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case err == nil:
		if err := db.Model(&settings).Update("settings_data", doc).Error; err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
		settings.SettingsData = doc
		return &settings, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = model.Settings{UserID: userID, SettingsData: doc}
		if err := db.Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("create settings: %w", err)
		}
		return &settings, nil
	default:
		return nil, fmt.Errorf("find settings: %w", err)
	}
}
