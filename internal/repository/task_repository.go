package repository

import (
	"context"

	"gorm.io/gorm"

	"auratask/internal/model"
)

// Status filter values accepted by task listing.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Sort orders accepted by task listing.
const (
	SortCreated  = "created"
	SortTitle    = "title"
	SortPriority = "priority"
)

// TaskFilter narrows and orders a task listing.
type TaskFilter struct {
	Status string // all | pending | completed; anything else means all
	SortBy string // created | title | priority; anything else means created
}

// TaskCounts aggregates per-user task statistics.
type TaskCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	FindByUser(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error)
	CountByUser(ctx context.Context, userID string, status string) (int64, error)
	Counts(ctx context.Context, userID string) (TaskCounts, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, task *model.Task) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByUser(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error) {
	query := applyStatus(r.db.WithContext(ctx).Where("user_id = ?", userID), filter.Status)

	switch filter.SortBy {
	case SortTitle:
		query = query.Order("title ASC")
	case SortPriority:
		// 'medium' < 'high' would break a lexical sort; FIELD keeps the
		// high -> medium -> low ordering the clients expect.
		query = query.Order("FIELD(priority, 'high', 'medium', 'low')")
	default:
		query = query.Order("created_at DESC")
	}

	var tasks []model.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountByUser(ctx context.Context, userID string, status string) (int64, error) {
	var count int64
	query := applyStatus(r.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", userID), status)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) Counts(ctx context.Context, userID string) (TaskCounts, error) {
	var counts TaskCounts
	var err error
	if counts.Total, err = r.CountByUser(ctx, userID, StatusAll); err != nil {
		return TaskCounts{}, err
	}
	if counts.Pending, err = r.CountByUser(ctx, userID, StatusPending); err != nil {
		return TaskCounts{}, err
	}
	if counts.Completed, err = r.CountByUser(ctx, userID, StatusCompleted); err != nil {
		return TaskCounts{}, err
	}
	return counts, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}

func applyStatus(query *gorm.DB, status string) *gorm.DB {
	switch status {
	case StatusPending:
		return query.Where("completed = ?", false)
	case StatusCompleted:
		return query.Where("completed = ?", true)
	default:
		return query
	}
}
