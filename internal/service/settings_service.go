package service

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"task-vault/internal/model"
	"task-vault/internal/repository"
)

// SettingsService reads and writes the per-user settings document.
type SettingsService struct {
	repo   *repository.SettingsRepository
	logger *log.Logger
}

func NewSettingsService(repo *repository.SettingsRepository, logger *log.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the user's settings document, or an empty one if none was saved yet.
func (s *SettingsService) Get(ctx context.Context) (model.Document, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.FindByUser(ctx, userID)
	switch {
	case err == nil:
		if settings.SettingsData == nil {
			return model.Document{}, nil
		}
		return settings.SettingsData, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Document{}, nil
	default:
		return nil, storeError("read settings", err)
	}
}

// Update replaces the user's settings document, creating the row on first write.
func (s *SettingsService) Update(ctx context.Context, doc model.Document) (*model.Settings, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.Upsert(ctx, userID, doc)
	if err != nil {
		return nil, storeError("upsert settings", err)
	}
	s.logger.Debug("settings updated", "user", userID)
	return settings, nil
}
