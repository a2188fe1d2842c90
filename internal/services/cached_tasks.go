package services

import (
	"context"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/models"

	"github.com/gofrs/uuid"
)

const boardListTTL = 5 * time.Minute

// CachedTaskService decorates a TaskService with board-list caching.
// Every mutation invalidates the owner's cached entries; a rollover that
// archives nothing leaves the cache alone.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, c cache.Cache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c}
}

func (s *CachedTaskService) CreateTask(ctx context.Context, owner string, input CreateTaskInput) (models.Task, error) {
	task, err := s.inner.CreateTask(ctx, owner, input)
	if err != nil {
		return task, err
	}
	s.invalidate(owner)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, owner string, id uuid.UUID, input UpdateTaskInput) (models.Task, error) {
	task, err := s.inner.UpdateTask(ctx, owner, id, input)
	if err != nil {
		return task, err
	}
	s.invalidate(owner)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, owner string, id uuid.UUID) error {
	if err := s.inner.DeleteTask(ctx, owner, id); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}

func (s *CachedTaskService) ListBoard(ctx context.Context, owner string) (BoardList, error) {
	key := cache.BoardKey(owner)

	var cached BoardList
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	list, err := s.inner.ListBoard(ctx, owner)
	if err != nil {
		return list, err
	}

	s.cache.Set(key, list, boardListTTL)
	return list, nil
}

func (s *CachedTaskService) RunRollover(ctx context.Context, owner string) (int64, error) {
	archived, err := s.inner.RunRollover(ctx, owner)
	if err != nil {
		return archived, err
	}
	if archived > 0 {
		s.invalidate(owner)
	}
	return archived, nil
}

func (s *CachedTaskService) invalidate(owner string) {
	s.cache.DeletePattern(cache.OwnerPattern(owner))
}
