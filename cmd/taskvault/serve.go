package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-vault/internal/bot"
	"task-vault/internal/httpapi"
	"task-vault/internal/service"
)

const autoBackupTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and scheduled backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	taskSvc := service.NewTaskService(a.store.Tasks, a.logger)
	settingsSvc := service.NewSettingsService(a.store.Settings, a.logger)
	backupSvc := service.NewBackupService(a.store, a.logger)
	authSvc := service.NewAuthService(a.store.Users, a.cfg.JWTSecret, a.cfg.TokenTTL, a.logger)

	if a.cfg.AutoBackupTime != "" {
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(a.cfg.AutoBackupTime, func() {
			jobCtx, cancel := context.WithTimeout(ctx, autoBackupTimeout)
			defer cancel()
			if err := backupSvc.CreateAutoBackups(jobCtx, time.Now(), a.cfg.AutoBackupKeep); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("auto backup", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule auto backups: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		a.logger.Info("auto backups scheduled", "at", a.cfg.AutoBackupTime, "keep", a.cfg.AutoBackupKeep, "jobs", scheduler.Entries())
	}

	var telegramBot *bot.Bot
	if a.cfg.TelegramToken != "" {
		telegramBot, err = bot.New(a.cfg.TelegramToken, a.store.Users, taskSvc, backupSvc, a.logger)
		if err != nil {
			return err
		}
	} else {
		a.logger.Warn("TELEGRAM_TOKEN is empty, bot disabled")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := httpapi.NewServer(authSvc, taskSvc, settingsSvc, backupSvc, a.logger).NewHTTPServer(a.cfg.HTTPAddr)
	errs := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.logger.Info("http server listening", "addr", a.cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
			cancel()
		}
	}()

	if telegramBot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errs <- fmt.Errorf("bot: %w", err)
				cancel()
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "err", err)
	}
	wg.Wait()
	close(errs)

	a.logger.Info("shutdown complete")
	return <-errs
}
