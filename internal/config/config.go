package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	TokenTTL       time.Duration
	TelegramToken  string
	AutoBackupTime string
	AutoBackupKeep int
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables (and an optional .env
// file) with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    env("DATABASE_URL"),
		HTTPAddr:       env("HTTP_ADDR"),
		JWTSecret:      env("JWT_SECRET"),
		TokenTTL:       parseHours(env("TOKEN_TTL_HOURS")),
		TelegramToken:  env("TELEGRAM_TOKEN"),
		AutoBackupTime: env("AUTO_BACKUP_TIME"),
		AutoBackupKeep: parseCount(env("AUTO_BACKUP_KEEP")),
		LogLevel:       env("LOG_LEVEL"),
		LogFormat:      env("LOG_FORMAT"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_vault.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.AutoBackupKeep == 0 {
		cfg.AutoBackupKeep = 7
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
