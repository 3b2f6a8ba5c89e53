package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-vault/internal/model"
)

// BackupRepository stores backup snapshots.
type BackupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Create(ctx context.Context, backup *model.Backup) error {
	if err := r.db.WithContext(ctx).Create(backup).Error; err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	return nil
}

// ListByUser returns the user's backups, most recent first.
func (r *BackupRepository) ListByUser(ctx context.Context, userID string) ([]model.Backup, error) {
	var backups []model.Backup
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id").
		Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}

func (r *BackupRepository) FindByID(ctx context.Context, userID, backupID string) (*model.Backup, error) {
	var backup model.Backup
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, backupID).First(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

// Delete removes one backup and reports how many rows were removed.
func (r *BackupRepository) Delete(ctx context.Context, userID, backupID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, backupID).Delete(&model.Backup{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete backup: %w", res.Error)
	}
	return res.RowsAffected, nil
}
