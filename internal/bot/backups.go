package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-vault/internal/model"
)

// handleBackup saves a backup named by the command argument, or asks for a name.
func (b *Bot) handleBackup(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		if _, _, err := b.userContext(ctx, msg.From); err != nil {
			return err
		}
		b.clearConfirmation(msg.From.ID)
		b.setConversation(msg.From.ID, &conversationState{stage: stageBackupName})
		return b.sendWithReplyMarkup(msg.Chat.ID, "💾 Как назвать резервную копию?", cancelKeyboard())
	}
	return b.createBackup(ctx, msg.Chat.ID, msg.From, name)
}

func (b *Bot) createBackup(ctx context.Context, chatID int64, from *tgbotapi.User, name string) error {
	userCtx, _, err := b.userContext(ctx, from)
	if err != nil {
		return err
	}

	backup, err := b.backupSvc.CreateBackup(userCtx, name)
	if err != nil {
		return b.replyError(chatID, "Не удалось сохранить копию", err)
	}

	b.logger.Info("backup created via bot", "telegram_id", from.ID, "backup", backup.ID, "tasks", len(backup.TasksData))
	text := fmt.Sprintf("💾 Копия «%s» сохранена: задач %d.", escape(backup.BackupName), len(backup.TasksData))
	return b.sendTextWithRemove(chatID, text)
}

func (b *Bot) handleListBackups(ctx context.Context, msg *tgbotapi.Message) error {
	userCtx, _, err := b.userContext(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendBackupList(userCtx, msg.Chat.ID)
}

func (b *Bot) sendBackupList(ctx context.Context, chatID int64) error {
	backups, err := b.backupSvc.ListBackups(ctx)
	if err != nil {
		return b.replyError(chatID, "Не удалось получить копии", err)
	}
	if len(backups) == 0 {
		return b.sendText(chatID, "Резервных копий пока нет. Сохрани первую: /backup &lt;название&gt;.")
	}

	text, markup := renderBackupList(backups)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err = b.api.Send(msg)
	return err
}

// renderBackupList formats backups newest first with restore, export and delete buttons.
func renderBackupList(backups []model.Backup) (string, tgbotapi.InlineKeyboardMarkup) {
	var builder strings.Builder
	builder.WriteString("💾 <b>Резервные копии</b>\n\n")

	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(backups))
	for _, backup := range backups {
		builder.WriteString(formatBackup(backup))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ "+shortTitle(backup.BackupName, 16), cbRestorePrefix+backup.ID),
			tgbotapi.NewInlineKeyboardButtonData("📤", cbExportPrefix+backup.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDropBackupPrefix+backup.ID),
		))
	}

	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func formatBackup(backup model.Backup) string {
	return fmt.Sprintf("• <b>%s</b>\n   🕒 %s · задач: %d\n",
		escape(backup.BackupName), backup.CreatedAt.Format("2006-01-02 15:04"), len(backup.TasksData))
}

func (b *Bot) askBackupConfirmation(ctx context.Context, chatID, telegramID int64, backupID string, action confirmationAction) error {
	backup, err := b.backupSvc.GetBackup(ctx, backupID)
	if err != nil {
		return b.replyError(chatID, "Не удалось найти копию", err)
	}

	name := backup.BackupName
	b.setConfirmation(telegramID, confirmationRequest{targetID: backup.ID, label: name, action: action})

	text := fmt.Sprintf("Удалить копию «%s»?", escape(name))
	if action == actionRestoreBackup {
		text = fmt.Sprintf("Восстановить копию «%s»? Текущие задачи (%d в копии) будут заменены.", escape(name), len(backup.TasksData))
	}
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) restoreBackupAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	userCtx, _, err := b.userContext(ctx, from)
	if err != nil {
		return err
	}
	if err := b.backupSvc.RestoreBackup(userCtx, req.targetID); err != nil {
		return b.replyError(chatID, "Не удалось восстановить копию", err)
	}

	b.logger.Info("backup restored via bot", "telegram_id", from.ID, "backup", req.targetID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("♻️ Копия «%s» восстановлена.", escape(req.label))); err != nil {
		return err
	}
	return b.sendTaskList(userCtx, chatID)
}

func (b *Bot) deleteBackupAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	userCtx, _, err := b.userContext(ctx, from)
	if err != nil {
		return err
	}
	if err := b.backupSvc.DeleteBackup(userCtx, req.targetID); err != nil {
		return b.replyError(chatID, "Не удалось удалить копию", err)
	}
	return b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Копия «%s» удалена.", escape(req.label)))
}

// sendExport uploads the backup document as a JSON file.
func (b *Bot) sendExport(ctx context.Context, chatID int64, backupID string) error {
	export, err := b.backupSvc.ExportBackup(ctx, backupID)
	if err != nil {
		return b.replyError(chatID, "Не удалось выгрузить копию", err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: export.Filename, Bytes: export.Content})
	doc.Caption = "📤 " + export.Filename
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", "err", err)
	}

	action, id, ok := parseCallbackData(cb.Data)
	if !ok {
		return nil
	}
	b.logger.Debug("callback", "from", cb.From.ID, "action", action, "id", id)

	userCtx, _, err := b.userContext(ctx, cb.From)
	if err != nil {
		return err
	}
	chatID := cb.Message.Chat.ID

	switch action {
	case cbCompletePrefix:
		return b.toggleTaskAndRefresh(userCtx, chatID, id)
	case cbDeletePrefix:
		task, err := b.taskSvc.GetTask(userCtx, id)
		if err != nil {
			return b.replyError(chatID, "Не удалось найти задачу", err)
		}
		return b.askDeleteTaskConfirmation(chatID, cb.From.ID, task)
	case cbRestorePrefix:
		return b.askBackupConfirmation(userCtx, chatID, cb.From.ID, id, actionRestoreBackup)
	case cbDropBackupPrefix:
		return b.askBackupConfirmation(userCtx, chatID, cb.From.ID, id, actionDeleteBackup)
	case cbExportPrefix:
		return b.sendExport(userCtx, chatID, id)
	default:
		return nil
	}
}

// parseCallbackData splits callback data into its prefix and record id.
func parseCallbackData(data string) (string, string, bool) {
	for _, prefix := range callbackPrefixes {
		if strings.HasPrefix(data, prefix) {
			id := strings.TrimSpace(strings.TrimPrefix(data, prefix))
			if id == "" {
				return "", "", false
			}
			return prefix, id, true
		}
	}
	return "", "", false
}
