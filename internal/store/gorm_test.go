package store_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"

	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store.NewGormStore(db)
}

func insertTask(t *testing.T, s *store.GormStore, owner, title, status string) models.Task {
	t.Helper()
	task := models.Task{
		ID:       uuid.Must(uuid.NewV4()),
		Owner:    owner,
		Title:    title,
		Status:   status,
		Priority: models.PriorityDefault,
	}
	if err := s.Insert(context.Background(), &task); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}
	return task
}

func TestInsertAndList(t *testing.T) {
	s := setupTestStore(t)

	inserted := insertTask(t, s, "family", "Buy milk", models.StatusTodo)

	if inserted.CreatedAt.IsZero() || inserted.UpdatedAt.IsZero() {
		t.Error("Insert should fill timestamps")
	}

	tasks, err := s.List(context.Background(), store.TaskFilter{Owner: "family"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if tasks[0].ID != inserted.ID {
		t.Errorf("Expected id %s, got %s", inserted.ID, tasks[0].ID)
	}
}

func TestListOwnerScoping(t *testing.T) {
	s := setupTestStore(t)

	insertTask(t, s, "family", "Ours", models.StatusTodo)
	insertTask(t, s, "neighbors", "Theirs", models.StatusTodo)

	tasks, err := s.List(context.Background(), store.TaskFilter{Owner: "family"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task for family, got %d", len(tasks))
	}
	if tasks[0].Title != "Ours" {
		t.Errorf("Expected family's own task, got %q", tasks[0].Title)
	}
}

func TestListArchivedFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	active := insertTask(t, s, "family", "Active", models.StatusTodo)
	archived := insertTask(t, s, "family", "Archived", models.StatusDone)

	month := "2024-05"
	_, err := s.Patch(ctx, store.TaskFilter{Owner: "family", ID: &archived.ID}, map[string]interface{}{
		"is_archived":   true,
		"archive_month": month,
	})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	activeTasks, err := s.List(ctx, store.TaskFilter{Owner: "family", Archived: store.ActiveOnly()})
	if err != nil {
		t.Fatalf("List active failed: %v", err)
	}
	if len(activeTasks) != 1 || activeTasks[0].ID != active.ID {
		t.Errorf("Expected only the active task, got %d rows", len(activeTasks))
	}

	archivedTasks, err := s.List(ctx, store.TaskFilter{Owner: "family", Archived: store.ArchivedOnly()})
	if err != nil {
		t.Fatalf("List archived failed: %v", err)
	}
	if len(archivedTasks) != 1 || archivedTasks[0].ID != archived.ID {
		t.Fatalf("Expected only the archived task, got %d rows", len(archivedTasks))
	}
	if archivedTasks[0].ArchiveMonth == nil || *archivedTasks[0].ArchiveMonth != month {
		t.Errorf("Expected archive month %q, got %v", month, archivedTasks[0].ArchiveMonth)
	}
}

func TestPatchReturnsRepresentation(t *testing.T) {
	s := setupTestStore(t)

	task := insertTask(t, s, "family", "Old title", models.StatusTodo)

	updated, err := s.Patch(context.Background(), store.TaskFilter{Owner: "family", ID: &task.ID}, map[string]interface{}{
		"title":  "New title",
		"status": models.StatusReview,
	})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("Expected 1 updated row, got %d", len(updated))
	}
	if updated[0].Title != "New title" || updated[0].Status != models.StatusReview {
		t.Errorf("Patch did not return the stored state: %+v", updated[0])
	}
}

func TestPatchWrongOwnerTouchesNothing(t *testing.T) {
	s := setupTestStore(t)

	task := insertTask(t, s, "family", "Protected", models.StatusTodo)

	updated, err := s.Patch(context.Background(), store.TaskFilter{Owner: "neighbors", ID: &task.ID}, map[string]interface{}{
		"title": "Hijacked",
	})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if len(updated) != 0 {
		t.Fatalf("Expected zero rows for wrong owner, got %d", len(updated))
	}

	tasks, _ := s.List(context.Background(), store.TaskFilter{Owner: "family"})
	if tasks[0].Title != "Protected" {
		t.Errorf("Row was modified across owners: %q", tasks[0].Title)
	}
}

func TestPatchBulkFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	insertTask(t, s, "family", "Done one", models.StatusDone)
	insertTask(t, s, "family", "Done two", models.StatusDone)
	insertTask(t, s, "family", "Still open", models.StatusTodo)

	updated, err := s.Patch(ctx, store.TaskFilter{
		Owner:         "family",
		Status:        models.StatusDone,
		Archived:      store.ActiveOnly(),
		UpdatedBefore: time.Now().Add(time.Hour),
	}, map[string]interface{}{
		"is_archived":   true,
		"archive_month": "2024-05",
	})
	if err != nil {
		t.Fatalf("Bulk patch failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("Expected 2 archived rows, got %d", len(updated))
	}
	for _, row := range updated {
		if !row.IsArchived {
			t.Errorf("Row %s not archived", row.ID)
		}
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	task := insertTask(t, s, "family", "Doomed", models.StatusTodo)

	affected, err := s.Delete(ctx, store.TaskFilter{Owner: "family", ID: &task.ID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 row deleted, got %d", affected)
	}

	tasks, _ := s.List(ctx, store.TaskFilter{Owner: "family"})
	if len(tasks) != 0 {
		t.Errorf("Expected empty board after delete, got %d rows", len(tasks))
	}

	affected, err = s.Delete(ctx, store.TaskFilter{Owner: "family", ID: &task.ID})
	if err != nil {
		t.Fatalf("Second delete errored: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected 0 rows on repeat delete, got %d", affected)
	}
}
