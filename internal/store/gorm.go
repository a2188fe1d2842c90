package store

import (
	"context"
	"fmt"

	"taskboard/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GormStore implements TaskStore over a GORM connection. It owns no state
// beyond the handle; all task state lives in the tasks table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context, filter TaskFilter, order ...string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	q := s.scope(ctx, filter)
	for _, o := range order {
		q = q.Order(o)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) Insert(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Patch applies fields to every row matching filter and returns the rows
// as stored afterwards. The select-update-reload runs in one transaction
// so the returned representation matches what was written.
func (s *GormStore) Patch(ctx context.Context, filter TaskFilter, fields map[string]interface{}) ([]models.Task, error) {
	updated := make([]models.Task, 0)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := scopeFilter(tx, filter).Model(&models.Task{}).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Model(&models.Task{}).
			Where("id IN ? AND owner = ?", ids, filter.Owner).
			Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id IN ? AND owner = ?", ids, filter.Owner).Find(&updated).Error
	})
	if err != nil {
		return nil, fmt.Errorf("patch tasks: %w", err)
	}
	return updated, nil
}

func (s *GormStore) Delete(ctx context.Context, filter TaskFilter) (int64, error) {
	res := s.scope(ctx, filter).Delete(&models.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) scope(ctx context.Context, filter TaskFilter) *gorm.DB {
	return scopeFilter(s.db.WithContext(ctx), filter)
}

func scopeFilter(db *gorm.DB, filter TaskFilter) *gorm.DB {
	q := db.Where("owner = ?", filter.Owner)
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.Archived != nil {
		q = q.Where("is_archived = ?", *filter.Archived)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.UpdatedBefore.IsZero() {
		q = q.Where("updated_at < ?", filter.UpdatedBefore)
	}
	return q
}
