package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"task-vault/internal/model"
	"task-vault/internal/repository"
)

// AutoBackupPrefix marks backups created by the scheduler.
const AutoBackupPrefix = "auto-"

// Export is a serialized backup ready to be handed to the user.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// BackupService creates, lists, restores, deletes and exports backups.
type BackupService struct {
	store  *repository.Store
	logger *log.Logger
}

func NewBackupService(store *repository.Store, logger *log.Logger) *BackupService {
	return &BackupService{store: store, logger: logger}
}

// CreateBackup snapshots the user's tasks and settings under the given name.
// The backup insert is the only write, so a failure persists nothing.
func (s *BackupService) CreateBackup(ctx context.Context, name string) (*model.Backup, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "backup_name", Message: "is required"}
	}

	tasks, err := s.store.Tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("read tasks", err)
	}

	settingsData := model.Document{}
	settings, err := s.store.Settings.FindByUser(ctx, userID)
	switch {
	case err == nil:
		settingsData = settings.SettingsData.Clone()
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, storeError("read settings", err)
	}

	snapshots := make(model.TaskSnapshots, 0, len(tasks))
	for _, task := range tasks {
		snapshots = append(snapshots, task.Snapshot())
	}

	backup := model.Backup{
		UserID:       userID,
		BackupName:   name,
		TasksData:    snapshots,
		SettingsData: settingsData,
	}
	if err := s.store.Backups.Create(ctx, &backup); err != nil {
		return nil, storeError("insert backup", err)
	}

	s.logger.Info("backup created", "user", userID, "backup", backup.ID, "tasks", len(snapshots))
	return &backup, nil
}

// ListBackups returns the user's backups, most recent first.
func (s *BackupService) ListBackups(ctx context.Context) ([]model.Backup, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	backups, err := s.store.Backups.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list backups", err)
	}
	return backups, nil
}

func (s *BackupService) GetBackup(ctx context.Context, backupID string) (*model.Backup, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	backup, err := s.store.Backups.FindByID(ctx, userID, backupID)
	if err != nil {
		return nil, storeError("fetch backup", err)
	}
	return backup, nil
}

// RestoreBackup replaces the user's tasks and settings document with the
// backup's contents. Deleting the live tasks, re-inserting the snapshot and
// upserting settings happen in one transaction: on failure nothing changes.
func (s *BackupService) RestoreBackup(ctx context.Context, backupID string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}

	backup, err := s.store.Backups.FindByID(ctx, userID, backupID)
	if err != nil {
		return storeError("fetch backup", err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.DeleteAllByUser(ctx, userID); err != nil {
			return storeError("delete tasks", err)
		}

		// Snapshots are newest first; distinct timestamps keep that order.
		now := time.Now()
		n := len(backup.TasksData)
		restored := make([]model.Task, 0, n)
		for i, snap := range backup.TasksData {
			restored = append(restored, model.Task{
				UserID:      userID,
				Title:       snap.Title,
				Description: snap.Description,
				IsUrgent:    snap.IsUrgent,
				IsCompleted: snap.IsCompleted,
				CreatedAt:   now.Add(time.Duration(n-1-i) * time.Microsecond),
			})
		}
		if err := tx.Tasks.CreateBatch(ctx, restored); err != nil {
			return storeError("insert tasks", err)
		}

		if _, err := tx.Settings.Upsert(ctx, userID, backup.SettingsData.Clone()); err != nil {
			return storeError("upsert settings", err)
		}
		return nil
	})
	if err != nil {
		var se *StoreError
		if errors.As(err, &se) {
			return err
		}
		return storeError("commit restore", err)
	}

	s.logger.Info("backup restored", "user", userID, "backup", backup.ID, "tasks", len(backup.TasksData))
	return nil
}

// DeleteBackup removes one backup. Deleting a missing backup yields ErrNotFound.
func (s *BackupService) DeleteBackup(ctx context.Context, backupID string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	n, err := s.store.Backups.Delete(ctx, userID, backupID)
	if err != nil {
		return storeError("delete backup", err)
	}
	if n == 0 {
		return fmt.Errorf("delete backup %s: %w", backupID, ErrNotFound)
	}
	s.logger.Info("backup deleted", "user", userID, "backup", backupID)
	return nil
}

// ExportBackup serializes one backup as an indented JSON document named
// after the backup.
func (s *BackupService) ExportBackup(ctx context.Context, backupID string) (*Export, error) {
	backup, err := s.GetBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}

	content, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	if err := validateBackupDocument(content); err != nil {
		return nil, fmt.Errorf("export backup %s: %w", backup.ID, err)
	}

	return &Export{
		Filename:    ExportFilename(backup.BackupName),
		ContentType: "application/json",
		Content:     content,
	}, nil
}

// ImportBackup stores a previously exported document as a new backup owned
// by the current user. The document's id and user_id are ignored.
func (s *BackupService) ImportBackup(ctx context.Context, data []byte) (*model.Backup, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateBackupDocument(data); err != nil {
		return nil, err
	}

	var doc model.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Message: err.Error()}
	}
	name := strings.TrimSpace(doc.BackupName)
	if name == "" {
		return nil, &ValidationError{Field: "backup_name", Message: "is required"}
	}
	if doc.TasksData == nil {
		doc.TasksData = model.TaskSnapshots{}
	}
	if doc.SettingsData == nil {
		doc.SettingsData = model.Document{}
	}
	for i := range doc.TasksData {
		title := strings.TrimSpace(doc.TasksData[i].Title)
		if title == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("tasks_data/%d/title", i), Message: "is required"}
		}
		doc.TasksData[i].Title = title
	}

	backup := model.Backup{
		UserID:       userID,
		BackupName:   name,
		TasksData:    doc.TasksData,
		SettingsData: doc.SettingsData,
	}
	if err := s.store.Backups.Create(ctx, &backup); err != nil {
		return nil, storeError("insert backup", err)
	}

	s.logger.Info("backup imported", "user", userID, "backup", backup.ID, "tasks", len(backup.TasksData))
	return &backup, nil
}

// CreateAutoBackups takes a dated backup for every user and keeps only the
// newest keep automatic backups per user. A failure for one user is logged
// and the run continues.
func (s *BackupService) CreateAutoBackups(ctx context.Context, now time.Time, keep int) error {
	users, err := s.store.Users.ListAll(ctx)
	if err != nil {
		return storeError("list users", err)
	}

	name := AutoBackupPrefix + now.Format("2006-01-02 15:04")
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		userCtx := WithUser(ctx, user.ID)
		if _, err := s.CreateBackup(userCtx, name); err != nil {
			s.logger.Error("auto backup failed", "user", user.ID, "err", err)
			continue
		}
		if err := s.pruneAutoBackups(userCtx, keep); err != nil {
			s.logger.Error("prune auto backups failed", "user", user.ID, "err", err)
		}
	}
	return nil
}

func (s *BackupService) pruneAutoBackups(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, backup := range backups {
		if !strings.HasPrefix(backup.BackupName, AutoBackupPrefix) {
			continue
		}
		kept++
		if kept <= keep {
			continue
		}
		if err := s.DeleteBackup(ctx, backup.ID); err != nil {
			return err
		}
	}
	return nil
}

// ExportFilename returns "<name>.json" with path separators replaced.
func ExportFilename(name string) string {
	clean := strings.TrimSpace(name)
	clean = strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(clean)
	if clean == "" || clean == "." || clean == ".." {
		clean = "backup"
	}
	return clean + ".json"
}
