package services

import (
	"context"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

// RolloverEngine moves completed, stale tasks into the monthly archive.
// Sweep is idempotent and safe to run unconditionally on every board
// load: when nothing qualifies it touches zero rows and returns nil.
type RolloverEngine struct {
	store store.TaskStore
	now   func() time.Time
}

func NewRolloverEngine(taskStore store.TaskStore) *RolloverEngine {
	return &RolloverEngine{store: taskStore, now: time.Now}
}

// WithClock replaces the time source; used by tests to pin the sweep
// instant.
func (e *RolloverEngine) WithClock(now func() time.Time) *RolloverEngine {
	e.now = now
	return e
}

// Sweep archives every unarchived done task last updated strictly before
// the first instant of the current month. The archive month is the
// previous calendar month, captured once here so every row in one sweep
// shares the same key.
func (e *RolloverEngine) Sweep(ctx context.Context, owner string) (int64, error) {
	now := e.now()
	monthKey := models.PrevMonthKey(now)

	rows, err := e.store.Patch(ctx, store.TaskFilter{
		Owner:         owner,
		Archived:      store.ActiveOnly(),
		Status:        models.StatusDone,
		UpdatedBefore: models.StartOfMonth(now),
	}, map[string]interface{}{
		"is_archived":   true,
		"archive_month": monthKey,
		"updated_at":    now,
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}
