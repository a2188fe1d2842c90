package services

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"

	"github.com/gofrs/uuid"
)

var (
	ErrMissingID     = errors.New("missing task id")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrNotFound      = errors.New("task not found")
)

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
}

// UpdateTaskInput carries the mutation allow-list. Pointer fields
// distinguish "absent" from zero values; anything else in the request
// body is ignored.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
}

// BoardList is the listTasks result: active tasks newest-first plus the
// archive grouped per month. Months holds the dated keys in descending
// order, with the "unknown" bucket last when present.
type BoardList struct {
	Active   []models.Task            `json:"tasks"`
	Archives map[string][]models.Task `json:"archives"`
	Months   []string                 `json:"months,omitempty"`
}

type TaskService interface {
	CreateTask(ctx context.Context, owner string, input CreateTaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, owner string, id uuid.UUID, input UpdateTaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, owner string, id uuid.UUID) error
	ListBoard(ctx context.Context, owner string) (BoardList, error)
	RunRollover(ctx context.Context, owner string) (int64, error)
}

type TaskServiceImpl struct {
	store    store.TaskStore
	rollover *RolloverEngine
	now      func() time.Time
}

func NewTaskService(taskStore store.TaskStore) *TaskServiceImpl {
	return &TaskServiceImpl{
		store:    taskStore,
		rollover: NewRolloverEngine(taskStore),
		now:      time.Now,
	}
}

// WithClock replaces the time source on the service and its rollover
// engine; used by tests to pin timestamps.
func (s *TaskServiceImpl) WithClock(now func() time.Time) *TaskServiceImpl {
	s.now = now
	s.rollover.WithClock(now)
	return s
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, owner string, input CreateTaskInput) (models.Task, error) {
	status := input.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		return models.Task{}, ErrInvalidStatus
	}

	priority := input.Priority
	if priority == 0 {
		priority = models.PriorityDefault
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:          id,
		Owner:       owner,
		Title:       models.NormalizeTitle(input.Title),
		Description: input.Description,
		Status:      status,
		Priority:    models.ClampPriority(priority),
	}
	if err := s.store.Insert(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, owner string, id uuid.UUID, input UpdateTaskInput) (models.Task, error) {
	if id == uuid.Nil {
		return models.Task{}, ErrMissingID
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = models.TruncateTitle(*input.Title)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return models.Task{}, ErrInvalidStatus
		}
		fields["status"] = *input.Status
	}
	if input.Priority != nil {
		fields["priority"] = models.ClampPriority(*input.Priority)
	}
	// Refreshed unconditionally, even for a no-op field set.
	fields["updated_at"] = s.now()

	updated, err := s.store.Patch(ctx, store.TaskFilter{Owner: owner, ID: &id}, fields)
	if err != nil {
		return models.Task{}, err
	}
	if len(updated) == 0 {
		// Zero rows covers both "no such task" and "task belongs to
		// another owner"; the two are deliberately indistinguishable.
		return models.Task{}, ErrNotFound
	}
	return updated[0], nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, owner string, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrMissingID
	}
	_, err := s.store.Delete(ctx, store.TaskFilter{Owner: owner, ID: &id})
	return err
}

func (s *TaskServiceImpl) ListBoard(ctx context.Context, owner string) (BoardList, error) {
	active, err := s.store.List(ctx,
		store.TaskFilter{Owner: owner, Archived: store.ActiveOnly()},
		"created_at DESC")
	if err != nil {
		return BoardList{}, err
	}

	archived, err := s.store.List(ctx,
		store.TaskFilter{Owner: owner, Archived: store.ArchivedOnly()},
		"archive_month DESC", "created_at DESC")
	if err != nil {
		return BoardList{}, err
	}

	list := BoardList{
		Active:   active,
		Archives: make(map[string][]models.Task),
	}
	hasUnknown := false
	for _, t := range archived {
		key := models.ArchiveMonthUnknown
		if t.ArchiveMonth != nil && *t.ArchiveMonth != "" {
			key = *t.ArchiveMonth
		}
		if _, seen := list.Archives[key]; !seen {
			if key == models.ArchiveMonthUnknown {
				hasUnknown = true
			} else {
				list.Months = append(list.Months, key)
			}
		}
		list.Archives[key] = append(list.Archives[key], t)
	}
	if hasUnknown {
		list.Months = append(list.Months, models.ArchiveMonthUnknown)
	}
	return list, nil
}

func (s *TaskServiceImpl) RunRollover(ctx context.Context, owner string) (int64, error) {
	return s.rollover.Sweep(ctx, owner)
}
