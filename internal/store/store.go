package store

import (
	"context"
	"time"

	"taskboard/internal/models"

	"github.com/gofrs/uuid"
)

// TaskFilter selects task rows. Owner is always required; every gateway
// operation is owner-scoped so one board can never touch another's rows.
type TaskFilter struct {
	Owner         string
	ID            *uuid.UUID
	Archived      *bool
	Status        string
	UpdatedBefore time.Time
}

// TaskStore is the narrow gateway onto the relational layer: list, insert,
// patch, delete. Patch returns the affected rows so callers get the
// authoritative representation without a separate read.
type TaskStore interface {
	List(ctx context.Context, filter TaskFilter, order ...string) ([]models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	Patch(ctx context.Context, filter TaskFilter, fields map[string]interface{}) ([]models.Task, error)
	Delete(ctx context.Context, filter TaskFilter) (int64, error)
}

func boolPtr(b bool) *bool { return &b }

// ArchivedOnly and ActiveOnly are the two archived-flag filters the board
// queries use.
func ArchivedOnly() *bool { return boolPtr(true) }
func ActiveOnly() *bool   { return boolPtr(false) }
