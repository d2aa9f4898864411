package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"auratask/internal/cache"
	apperrors "auratask/internal/errors"
	"auratask/internal/model"
	"auratask/internal/repository"
)

const statsCacheTTL = 5 * time.Minute

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *time.Time
	Completed   *bool
}

// TaskService handles task operations. Every operation takes the resolved
// subject id and enforces ownership before touching a row.
type TaskService interface {
	List(ctx context.Context, subjectID, userID string, filter repository.TaskFilter) ([]model.Task, int64, error)
	Stats(ctx context.Context, subjectID, userID string) (repository.TaskCounts, error)
	Create(ctx context.Context, subjectID string, input CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, subjectID string, id uint) (*model.Task, error)
	Update(ctx context.Context, subjectID string, id uint, input UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, subjectID string, id uint) error
	ToggleComplete(ctx context.Context, subjectID string, id uint) (*model.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
	cache *cache.Client
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, cache *cache.Client) TaskService {
	return &taskService{
		tasks: tasks,
		cache: cache,
	}
}

// List returns the user's tasks plus the matching-row count for the same
// filter. The explicit user_id parameter must match the resolved subject.
func (s *taskService) List(ctx context.Context, subjectID, userID string, filter repository.TaskFilter) ([]model.Task, int64, error) {
	if userID != subjectID {
		return nil, 0, apperrors.ErrForbidden
	}

	tasks, err := s.tasks.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	count, err := s.tasks.CountByUser(ctx, userID, filter.Status)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return tasks, count, nil
}

// Stats returns total/pending/completed counts with caching.
func (s *taskService) Stats(ctx context.Context, subjectID, userID string) (repository.TaskCounts, error) {
	if userID != subjectID {
		return repository.TaskCounts{}, apperrors.ErrForbidden
	}

	if data, _ := s.cache.Get(ctx, s.statsKey(userID)); data != nil {
		var cached repository.TaskCounts
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	counts, err := s.tasks.Counts(ctx, userID)
	if err != nil {
		return repository.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}

	if payload, err := json.Marshal(counts); err == nil {
		_ = s.cache.Set(ctx, s.statsKey(userID), payload, statsCacheTTL)
	}
	return counts, nil
}

// Create stores a new task owned by the subject.
func (s *taskService) Create(ctx context.Context, subjectID string, input CreateTaskInput) (*model.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		UserID:      subjectID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		DueDate:     input.DueDate,
		Completed:   false,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidateStats(ctx, subjectID)
	return task, nil
}

// Get returns a single task after the ownership check.
func (s *taskService) Get(ctx context.Context, subjectID string, id uint) (*model.Task, error) {
	return s.ownedTask(ctx, subjectID, id)
}

// Update applies a partial update; only provided fields change.
func (s *taskService) Update(ctx context.Context, subjectID string, id uint, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.ownedTask(ctx, subjectID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.invalidateStats(ctx, subjectID)
	return task, nil
}

// Delete removes a task owned by the subject.
func (s *taskService) Delete(ctx context.Context, subjectID string, id uint) error {
	task, err := s.ownedTask(ctx, subjectID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.invalidateStats(ctx, subjectID)
	return nil
}

// ToggleComplete flips the completed flag.
func (s *taskService) ToggleComplete(ctx context.Context, subjectID string, id uint) (*model.Task, error) {
	task, err := s.ownedTask(ctx, subjectID, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}

	s.invalidateStats(ctx, subjectID)
	return task, nil
}

// ownedTask loads a task and verifies the subject owns it. A missing row is
// NotFound; a row owned by someone else is Forbidden and its content never
// leaves the service.
func (s *taskService) ownedTask(ctx context.Context, subjectID string, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.UserID != subjectID {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

func (s *taskService) statsKey(userID string) string {
	return fmt.Sprintf("task_stats:%s", userID)
}

func (s *taskService) invalidateStats(ctx context.Context, userID string) {
	_ = s.cache.Delete(ctx, s.statsKey(userID))
}
