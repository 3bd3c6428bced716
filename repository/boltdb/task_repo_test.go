package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/repository"
)

func newTestRepo(t *testing.T) (*TaskRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	repo, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestCreateAndList(t *testing.T) {
	repo, _ := newTestRepo(t)

	due := domain.NewDate(2024, time.June, 1)
	first, err := repo.Create(context.Background(), "  Write docs  ", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != 1 || first.Title != "Write docs" {
		t.Errorf("first = %+v", first)
	}
	second, err := repo.Create(context.Background(), "Ship feature", "notes", &due)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second id = %d", second.ID)
	}

	tasks, err := repo.List(context.Background(), repository.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != 1 || tasks[1].ID != 2 {
		t.Errorf("tasks = %+v", tasks)
	}
	if tasks[1].DueDate == nil || *tasks[1].DueDate != due {
		t.Errorf("due = %v", tasks[1].DueDate)
	}
}

func TestValidation(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.Create(context.Background(), "   ", "", nil); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdateAndFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	task, err := repo.Create(context.Background(), "Plan sprint", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := true
	updated, err := repo.Update(context.Background(), task.ID, repository.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed {
		t.Error("not completed")
	}

	completed := true
	tasks, err := repo.List(context.Background(), repository.TaskFilter{Completed: &completed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("filtered = %+v", tasks)
	}

	// empty patch leaves updated_at alone
	same, err := repo.Update(context.Background(), task.ID, repository.TaskPatch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !same.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Error("no-op update touched updated_at")
	}

	if _, err := repo.Update(context.Background(), 77, repository.TaskPatch{Completed: &done}); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	task, err := repo.Create(context.Background(), "Trim backlog", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(context.Background(), task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := repo.Delete(context.Background(), task.ID); err == nil {
		t.Error("second delete succeeded")
	}
}

func TestNextIDAcrossReopen(t *testing.T) {
	repo, path := newTestRepo(t)
	for _, title := range []string{"a", "b", "c"} {
		if _, err := repo.Create(context.Background(), title, "", nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	task, err := reopened.Create(context.Background(), "d", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != 3 {
		t.Errorf("id after reopen = %d, want 3", task.ID)
	}
}

func TestClearResetsCounter(t *testing.T) {
	repo, _ := newTestRepo(t)
	for _, title := range []string{"a", "b"} {
		if _, err := repo.Create(context.Background(), title, "", nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	tasks, err := repo.List(context.Background(), repository.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks = %+v after clear", tasks)
	}
	task, err := repo.Create(context.Background(), "fresh", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != 1 {
		t.Errorf("id after clear = %d, want 1", task.ID)
	}
}
