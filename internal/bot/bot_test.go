package bot

import (
	"strings"
	"testing"
	"time"

	"task-vault/internal/model"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data   string
		action string
		id     string
		ok     bool
	}{
		{"complete:abc", cbCompletePrefix, "abc", true},
		{"delete:abc", cbDeletePrefix, "abc", true},
		{"restore:0b6f", cbRestorePrefix, "0b6f", true},
		{"export:0b6f", cbExportPrefix, "0b6f", true},
		{"dropbackup:0b6f", cbDropBackupPrefix, "0b6f", true},
		{"complete:", "", "", false},
		{"unknown:1", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		action, id, ok := parseCallbackData(tc.data)
		if action != tc.action || id != tc.id || ok != tc.ok {
			t.Errorf("parseCallbackData(%q) = %q, %q, %v; want %q, %q, %v", tc.data, action, id, ok, tc.action, tc.id, tc.ok)
		}
	}
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	for _, prefix := range callbackPrefixes {
		if n := len(prefix + id); n > 64 {
			t.Errorf("callback %q is %d bytes", prefix, n)
		}
	}
}

func TestParsePosition(t *testing.T) {
	if pos, err := parsePosition(" 3 "); err != nil || pos != 3 {
		t.Fatalf("parsePosition = %d, %v", pos, err)
	}
	for _, bad := range []string{"", "0", "-2", "abc"} {
		if _, err := parsePosition(bad); err == nil {
			t.Errorf("parsePosition(%q) succeeded", bad)
		}
	}
}

func TestShortTitle(t *testing.T) {
	if got := shortTitle("купить молоко", 40); got != "Купить молоко" {
		t.Fatalf("got %q", got)
	}
	if got := shortTitle("abcdefgh", 5); got != "Abcd…" {
		t.Fatalf("got %q", got)
	}
	if got := shortTitle("line\nbreak", 20); got != "Line break" {
		t.Fatalf("got %q", got)
	}
}

func TestInputMatchers(t *testing.T) {
	if !isSkipInput(btnSkip) || !isSkipInput("-") || isSkipInput("текст") {
		t.Fatal("skip matcher")
	}
	if !isYesInput("да") || !isNoInput("Нет") || isYesInput("нет") {
		t.Fatal("yes/no matcher")
	}
	if !isConfirmInput(btnConfirm) || !isCancelInput(btnCancel) || !isCancelDialogInput(btnCancelDialog) {
		t.Fatal("confirmation matchers")
	}
}

func TestRenderTaskList(t *testing.T) {
	now := time.Now()
	tasks := []model.Task{
		{ID: "t1", Title: "срочно", IsUrgent: true, CreatedAt: now},
		{ID: "t2", Title: "обычная <b>", Description: "детали", CreatedAt: now},
		{ID: "t3", Title: "готово", IsCompleted: true, CreatedAt: now},
	}

	text, markup := renderTaskList(tasks)

	if !strings.Contains(text, "Активных: 2 · Срочных: 1 · Выполнено: 1") {
		t.Fatalf("missing counts header:\n%s", text)
	}
	if !strings.Contains(text, iconUrgent+" <b>1.</b> Срочно") {
		t.Fatalf("urgent task not first:\n%s", text)
	}
	if !strings.Contains(text, "Обычная &lt;b&gt;") {
		t.Fatalf("title not escaped:\n%s", text)
	}
	if !strings.Contains(text, "<s>Готово</s>") {
		t.Fatalf("completed task not struck through:\n%s", text)
	}
	if len(markup.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d", len(markup.InlineKeyboard))
	}
	row := markup.InlineKeyboard[1]
	if *row[0].CallbackData != cbCompletePrefix+"t2" || *row[1].CallbackData != cbDeletePrefix+"t2" {
		t.Fatalf("unexpected callbacks %q %q", *row[0].CallbackData, *row[1].CallbackData)
	}
}

func TestRenderBackupList(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	backups := []model.Backup{
		{ID: "b1", BackupName: "before cleanup", CreatedAt: created, TasksData: model.TaskSnapshots{{Title: "a"}, {Title: "b"}}},
	}

	text, markup := renderBackupList(backups)

	if !strings.Contains(text, "before cleanup") || !strings.Contains(text, "2026-03-01 09:30 · задач: 2") {
		t.Fatalf("unexpected text:\n%s", text)
	}
	row := markup.InlineKeyboard[0]
	want := []string{cbRestorePrefix + "b1", cbExportPrefix + "b1", cbDropBackupPrefix + "b1"}
	for i, data := range want {
		if *row[i].CallbackData != data {
			t.Errorf("button %d = %q, want %q", i, *row[i].CallbackData, data)
		}
	}
}
