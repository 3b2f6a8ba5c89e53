package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-vault/internal/model"
	"task-vault/internal/service"
)

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, _, err := b.userContext(ctx, msg.From); err != nil {
		return err
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Как назвать задачу?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Добавь короткое описание (или нажми «Пропустить»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageUrgent
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔥 Задача срочная?", yesNoKeyboard())
	case stageUrgent:
		switch {
		case isYesInput(text):
			state.input.IsUrgent = true
		case isNoInput(text):
			state.input.IsUrgent = false
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нажми «Да» или «Нет».", yesNoKeyboard())
		}
		b.clearConversation(msg.From.ID)
		return b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
	case stageBackupName:
		b.clearConversation(msg.From.ID)
		return b.createBackup(ctx, msg.Chat.ID, msg.From, text)
	default:
		b.clearConversation(msg.From.ID)
		return nil
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	userCtx, _, err := b.userContext(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(userCtx, input)
	if err != nil {
		return b.replyError(chatID, "Не удалось создать задачу", err)
	}

	b.logger.Info("task created via bot", "telegram_id", from.ID, "task", task.ID)

	text := fmt.Sprintf("✅ Задача «%s» добавлена.", escape(normalizeTitle(task.Title)))
	if task.IsUrgent {
		text += " Помечена как срочная."
	}
	if err := b.sendTextWithRemove(chatID, text); err != nil {
		return err
	}
	return b.sendTaskList(userCtx, chatID)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	userCtx, _, err := b.userContext(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTaskList(userCtx, msg.Chat.ID)
}

// handleComplete toggles completion of the task at the given list position.
func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	userCtx, _, err := b.userContext(ctx, msg.From)
	if err != nil {
		return err
	}
	task, ok, err := b.taskAtPosition(userCtx, msg.Chat.ID, msg.CommandArguments(), "/complete 2")
	if err != nil || !ok {
		return err
	}
	return b.toggleTaskAndRefresh(userCtx, msg.Chat.ID, task.ID)
}

// handleDelete asks to confirm deletion of the task at the given list position.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	userCtx, _, err := b.userContext(ctx, msg.From)
	if err != nil {
		return err
	}
	task, ok, err := b.taskAtPosition(userCtx, msg.Chat.ID, msg.CommandArguments(), "/delete 2")
	if err != nil || !ok {
		return err
	}
	return b.askDeleteTaskConfirmation(msg.Chat.ID, msg.From.ID, task)
}

func (b *Bot) taskAtPosition(ctx context.Context, chatID int64, args, example string) (*model.Task, bool, error) {
	pos, err := parsePosition(args)
	if err != nil {
		return nil, false, b.sendText(chatID, fmt.Sprintf("Укажи номер задачи из /tasks: %s", example))
	}
	tasks, err := b.taskSvc.ListTasks(ctx)
	if err != nil {
		return nil, false, b.replyError(chatID, "Не удалось получить задачи", err)
	}
	if pos > len(tasks) {
		return nil, false, b.sendText(chatID, fmt.Sprintf("Задачи с номером %d нет. Всего задач: %d.", pos, len(tasks)))
	}
	return &tasks[pos-1], true, nil
}

func (b *Bot) askDeleteTaskConfirmation(chatID, telegramID int64, task *model.Task) error {
	title := normalizeTitle(task.Title)
	b.setConfirmation(telegramID, confirmationRequest{targetID: task.ID, label: title, action: actionDeleteTask})
	text := fmt.Sprintf("Удалить задачу «%s»?", escape(title))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) toggleTaskAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.taskSvc.GetTask(ctx, taskID)
	if err != nil {
		return b.replyError(chatID, "Не удалось найти задачу", err)
	}
	updated, err := b.taskSvc.ToggleComplete(ctx, taskID, !task.IsCompleted)
	if err != nil {
		return b.replyError(chatID, "Не удалось обновить задачу", err)
	}

	text := fmt.Sprintf("✅ Задача «%s» выполнена.", escape(normalizeTitle(updated.Title)))
	if !updated.IsCompleted {
		text = fmt.Sprintf("↩️ Задача «%s» снова активна.", escape(normalizeTitle(updated.Title)))
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	userCtx, _, err := b.userContext(ctx, from)
	if err != nil {
		return err
	}
	if err := b.taskSvc.DeleteTask(userCtx, req.targetID); err != nil {
		return b.replyError(chatID, "Не удалось удалить задачу", err)
	}
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(req.label))); err != nil {
		return err
	}
	return b.sendTaskList(userCtx, chatID)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.taskSvc.ListTasks(ctx)
	if err != nil {
		return b.replyError(chatID, "Не удалось получить задачи", err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "У тебя пока нет задач. Добавь новую через /newtask.")
	}

	text, markup := renderTaskList(tasks)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err = b.api.Send(msg)
	return err
}

// renderTaskList formats tasks already in display order with one button row per task.
func renderTaskList(tasks []model.Task) (string, tgbotapi.InlineKeyboardMarkup) {
	counts := service.DeriveCounts(tasks)

	var builder strings.Builder
	builder.WriteString("📋 <b>Задачи</b>\n")
	builder.WriteString(fmt.Sprintf("Активных: %d · Срочных: %d · Выполнено: %d\n\n", counts.Active, counts.Urgent, counts.Completed))

	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for i, task := range tasks {
		builder.WriteString(formatTask(i+1, task))

		label := fmt.Sprintf("✅ %d · %s", i+1, shortTitle(task.Title, 24))
		if task.IsCompleted {
			label = fmt.Sprintf("↩️ %d · %s", i+1, shortTitle(task.Title, 24))
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbCompletePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}

	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func formatTask(pos int, task model.Task) string {
	var b strings.Builder
	icon := iconDefault
	switch {
	case task.IsCompleted:
		icon = iconCompleted
	case task.IsUrgent:
		icon = iconUrgent
	}
	title := escape(normalizeTitle(task.Title))
	if task.IsCompleted {
		title = "<s>" + title + "</s>"
	}
	b.WriteString(fmt.Sprintf("%s <b>%d.</b> %s\n", icon, pos, title))
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
	}
	return b.String()
}

// parsePosition reads a 1-based list position.
func parsePosition(args string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0, err
	}
	if value < 1 {
		return 0, fmt.Errorf("position must be positive, got %d", value)
	}
	return value, nil
}
