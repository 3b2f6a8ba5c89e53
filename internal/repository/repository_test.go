package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"task-vault/internal/model"
)

func setupTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := NewDB(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db), db
}

func mustUser(t *testing.T, store *Store, telegramID int64) *model.User {
	t.Helper()
	user, err := store.Users.UpsertFromTelegram(context.Background(), telegramID, "Test", "User", "tester")
	if err != nil {
		t.Fatalf("UpsertFromTelegram: %v", err)
	}
	return user
}

func TestTaskRepositoryScopesByOwner(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, 1)
	bob := mustUser(t, store, 2)

	task := model.Task{UserID: alice.ID, Title: "buy milk"}
	if err := store.Tasks.Create(ctx, &task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected id to be assigned on create")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be assigned on create")
	}

	if _, err := store.Tasks.FindByID(ctx, bob.ID, task.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("FindByID as other user: got %v, want ErrRecordNotFound", err)
	}

	n, err := store.Tasks.Delete(ctx, bob.ID, task.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("other user deleted %d rows", n)
	}

	tasks, err := store.Tasks.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
}

func TestTaskRepositoryDeleteAllByUser(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, 1)
	bob := mustUser(t, store, 2)

	if err := store.Tasks.CreateBatch(ctx, []model.Task{
		{UserID: alice.ID, Title: "a1"},
		{UserID: alice.ID, Title: "a2"},
		{UserID: bob.ID, Title: "b1"},
	}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := store.Tasks.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("CreateBatch(nil): %v", err)
	}

	if err := store.Tasks.DeleteAllByUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAllByUser: %v", err)
	}

	aliceTasks, _ := store.Tasks.ListByUser(ctx, alice.ID)
	bobTasks, _ := store.Tasks.ListByUser(ctx, bob.ID)
	if len(aliceTasks) != 0 || len(bobTasks) != 1 {
		t.Fatalf("got alice=%d bob=%d tasks, want 0 and 1", len(aliceTasks), len(bobTasks))
	}
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1)

	if _, err := store.Settings.FindByUser(ctx, user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("FindByUser before write: got %v", err)
	}

	first, err := store.Settings.Upsert(ctx, user.ID, model.Document{"theme": "light"})
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	second, err := store.Settings.Upsert(ctx, user.ID, model.Document{"theme": "dark"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert replaced the row: %s != %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&model.Settings{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 settings row, got %d", count)
	}

	stored, err := store.Settings.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if stored.SettingsData["theme"] != "dark" {
		t.Fatalf("theme = %v, want dark", stored.SettingsData["theme"])
	}
}

func TestBackupRepositoryRoundTripsSnapshot(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1)

	backup := model.Backup{
		UserID:     user.ID,
		BackupName: "snap",
		TasksData: model.TaskSnapshots{
			{ID: "t1", UserID: user.ID, Title: "first", IsUrgent: true},
			{ID: "t2", UserID: user.ID, Title: "second", IsCompleted: true},
		},
		SettingsData: model.Document{"theme": "dark"},
	}
	if err := store.Backups.Create(ctx, &backup); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Backups.FindByID(ctx, user.ID, backup.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.TasksData) != 2 || got.TasksData[0].Title != "first" || !got.TasksData[0].IsUrgent {
		t.Fatalf("unexpected tasks data: %+v", got.TasksData)
	}
	if got.SettingsData["theme"] != "dark" {
		t.Fatalf("unexpected settings data: %+v", got.SettingsData)
	}

	n, err := store.Backups.Delete(ctx, user.ID, backup.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	n, err = store.Backups.Delete(ctx, user.ID, backup.ID)
	if err != nil || n != 0 {
		t.Fatalf("second Delete: n=%d err=%v", n, err)
	}
}

func TestStoreTransactionRollsBack(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1)

	if err := store.Tasks.Create(ctx, &model.Task{UserID: user.ID, Title: "keep me"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.Tasks.DeleteAllByUser(ctx, user.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction: got %v, want boom", err)
	}

	tasks, err := store.Tasks.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("rollback lost tasks: got %d", len(tasks))
	}
}

func TestUserRepositoryEmailUnique(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.Users.CreateWithEmail(ctx, "a@example.com", "hash"); err != nil {
		t.Fatalf("CreateWithEmail: %v", err)
	}
	if _, err := store.Users.CreateWithEmail(ctx, "a@example.com", "hash"); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicatedKey", err)
	}

	// Telegram users have no email; several NULLs must coexist.
	mustUser(t, store, 10)
	mustUser(t, store, 11)
}
