package services_test

import (
	"context"
	"testing"

	"taskboard/internal/cache"
	"taskboard/internal/models"
	"taskboard/internal/services"
	"taskboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCachedService(t *testing.T) (*services.CachedTaskService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}))

	inner := services.NewTaskService(store.NewGormStore(db))
	return services.NewCachedTaskService(inner, cache.NewMultiLevelCache(nil)), db
}

func TestCachedListServesFromCache(t *testing.T) {
	svc, db := setupCachedService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, "family", services.CreateTaskInput{Title: "Chore"})
	require.NoError(t, err)

	first, err := svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	require.Len(t, first.Active, 1)

	// Bypass the service so the cache goes stale on purpose.
	require.NoError(t, db.Exec("DELETE FROM tasks").Error)

	second, err := svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	assert.Len(t, second.Active, 1, "expected the cached list, not a fresh read")
}

func TestCachedMutationsInvalidate(t *testing.T) {
	svc, _ := setupCachedService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "family", services.CreateTaskInput{Title: "Chore"})
	require.NoError(t, err)

	list, err := svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	require.Len(t, list.Active, 1)

	status := models.StatusDone
	_, err = svc.UpdateTask(ctx, "family", task.ID, services.UpdateTaskInput{Status: &status})
	require.NoError(t, err)

	list, err = svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	require.Len(t, list.Active, 1)
	assert.Equal(t, models.StatusDone, list.Active[0].Status, "update must bust the cached list")

	require.NoError(t, svc.DeleteTask(ctx, "family", task.ID))

	list, err = svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	assert.Empty(t, list.Active, "delete must bust the cached list")
}

func TestCachedInvalidationIsPerOwner(t *testing.T) {
	svc, db := setupCachedService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, "family", services.CreateTaskInput{Title: "Ours"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "neighbors", services.CreateTaskInput{Title: "Theirs"})
	require.NoError(t, err)

	_, err = svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	_, err = svc.ListBoard(ctx, "neighbors")
	require.NoError(t, err)

	// Stale both underlying boards, then mutate only the family board.
	require.NoError(t, db.Exec("DELETE FROM tasks WHERE owner = 'neighbors'").Error)
	_, err = svc.CreateTask(ctx, "family", services.CreateTaskInput{Title: "Another"})
	require.NoError(t, err)

	familyList, err := svc.ListBoard(ctx, "family")
	require.NoError(t, err)
	assert.Len(t, familyList.Active, 2)

	neighborList, err := svc.ListBoard(ctx, "neighbors")
	require.NoError(t, err)
	assert.Len(t, neighborList.Active, 1, "neighbor cache entry should be untouched")
}
