package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"task-vault/internal/model"
	"task-vault/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsUrgent    bool   `json:"is_urgent"`
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsUrgent    *bool   `json:"is_urgent"`
	IsCompleted *bool   `json:"is_completed"`
}

// TaskCounts are the task list headline numbers.
type TaskCounts struct {
	Active    int `json:"active"`
	Urgent    int `json:"urgent"`
	Completed int `json:"completed"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	logger   *log.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, logger *log.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, logger: logger}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}

	task := model.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		IsUrgent:    input.IsUrgent,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, storeError("insert task", err)
	}

	s.logger.Debug("task created", "user", userID, "task", task.ID, "urgent", task.IsUrgent)
	return &task, nil
}

// ListTasks returns the user's tasks in display order.
func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return SortTasks(tasks), nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*model.Task, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Message: "is required"}
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.IsUrgent != nil {
		fields["is_urgent"] = *patch.IsUrgent
	}
	if patch.IsCompleted != nil {
		fields["is_completed"] = *patch.IsCompleted
	}

	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	if err := s.taskRepo.Update(ctx, task, fields); err != nil {
		return nil, storeError("update task", err)
	}
	updated, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	return updated, nil
}

// ToggleComplete sets the completion flag of a task.
func (s *TaskService) ToggleComplete(ctx context.Context, taskID string, completed bool) (*model.Task, error) {
	return s.UpdateTask(ctx, taskID, TaskPatch{IsCompleted: &completed})
}

// DeleteTask removes a task; a missing task yields ErrNotFound.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	n, err := s.taskRepo.Delete(ctx, userID, taskID)
	if err != nil {
		return storeError("delete task", err)
	}
	if n == 0 {
		return fmt.Errorf("delete task %s: %w", taskID, ErrNotFound)
	}
	s.logger.Debug("task deleted", "user", userID, "task", taskID)
	return nil
}

// Counts derives the headline numbers from the live task set.
func (s *TaskService) Counts(ctx context.Context) (TaskCounts, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return TaskCounts{}, err
	}
	return DeriveCounts(tasks), nil
}

// SortTasks returns a new slice ordered for display: incomplete before
// completed, then urgent before normal, then newest first. Ties keep their
// input order. The input is not modified.
func SortTasks(tasks []model.Task) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if a.IsUrgent != b.IsUrgent {
			return a.IsUrgent
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return sorted
}

// DeriveCounts counts active (not completed), urgent (urgent and not
// completed) and completed tasks.
func DeriveCounts(tasks []model.Task) TaskCounts {
	var counts TaskCounts
	for _, task := range tasks {
		if task.IsCompleted {
			counts.Completed++
			continue
		}
		counts.Active++
		if task.IsUrgent {
			counts.Urgent++
		}
	}
	return counts
}
