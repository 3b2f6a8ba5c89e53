package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "HTTP_ADDR", "TOKEN_TTL_HOURS", "TELEGRAM_TOKEN", "AUTO_BACKUP_TIME", "AUTO_BACKUP_KEEP", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "task_vault.db" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.AutoBackupKeep != 7 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL_HOURS", "6")
	t.Setenv("AUTO_BACKUP_KEEP", "3")
	t.Setenv("AUTO_BACKUP_TIME", " 03:30 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 6*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.AutoBackupKeep != 3 {
		t.Fatalf("AutoBackupKeep = %d", cfg.AutoBackupKeep)
	}
	if cfg.AutoBackupTime != "03:30" {
		t.Fatalf("AutoBackupTime = %q", cfg.AutoBackupTime)
	}
}

func TestParseHoursRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "-2", "0"} {
		if got := parseHours(raw); got != 0 {
			t.Errorf("parseHours(%q) = %v, want 0", raw, got)
		}
	}
}
