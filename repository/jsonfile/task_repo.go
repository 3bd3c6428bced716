// Package jsonfile persists tasks to a human-readable JSON file, fully
// rewriting it after every mutation. The file is assumed to have a single
// writer; two instances pointed at the same path will race.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/repository"
)

type taskRepository struct {
	mu     sync.Mutex
	path   string // empty means in-memory only
	tasks  map[int]domain.Task
	nextID int
	logger *zap.Logger
}

// New returns a TaskRepository backed by the JSON file at path. If the
// file exists it is loaded and the id counter becomes max(existing)+1;
// a missing file starts an empty collection. An empty path keeps the
// repository purely in memory.
func New(path string, logger *zap.Logger) (repository.TaskRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &taskRepository{
		path:   path,
		tasks:  make(map[int]domain.Task),
		nextID: 1,
		logger: logger,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *taskRepository) load() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}

	var payload []map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.NewMalformedRecord("storage file is not a JSON array", err)
	}

	for _, item := range payload {
		task, err := domain.TaskFromMap(item)
		if err != nil {
			return err
		}
		r.tasks[task.ID] = task
		if task.ID >= r.nextID {
			r.nextID = task.ID + 1
		}
	}

	r.logger.Debug("storage loaded",
		zap.String("path", r.path),
		zap.Int("tasks", len(r.tasks)),
	)
	return nil
}

// save rewrites the whole collection in ascending id order. Callers must
// hold the mutex.
func (r *taskRepository) save() error {
	if r.path == "" {
		return nil
	}

	tasks := r.sortedLocked(repository.TaskFilter{})
	payload := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		payload = append(payload, task.ToMap())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(filter), nil
}

func (r *taskRepository) GetByID(_ context.Context, id int) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.NewTaskNotFound(id)
	}
	out := cloneTask(task)
	return &out, nil
}

func (r *taskRepository) Create(_ context.Context, title, description string, due *domain.Date) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	task := domain.Task{
		ID:          r.nextID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if due != nil {
		d := *due
		task.DueDate = &d
	}

	r.tasks[task.ID] = task
	r.nextID++

	if err := r.save(); err != nil {
		return nil, err
	}
	r.logger.Debug("task created", zap.Int("id", task.ID))

	out := cloneTask(task)
	return &out, nil
}

func (r *taskRepository) Update(_ context.Context, id int, patch repository.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.NewTaskNotFound(id)
	}

	updated, changed, err := repository.Apply(task, patch)
	if err != nil {
		return nil, err
	}
	if !changed {
		out := cloneTask(task)
		return &out, nil
	}

	updated.UpdatedAt = time.Now().UTC()
	r.tasks[id] = updated

	if err := r.save(); err != nil {
		return nil, err
	}
	r.logger.Debug("task updated", zap.Int("id", id))

	out := cloneTask(updated)
	return &out, nil
}

func (r *taskRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.NewTaskNotFound(id)
	}
	delete(r.tasks, id)

	if err := r.save(); err != nil {
		return err
	}
	r.logger.Debug("task deleted", zap.Int("id", id))
	return nil
}

func (r *taskRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = make(map[int]domain.Task)
	r.nextID = 1

	if r.path == "" {
		return nil
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove storage file: %w", err)
	}
	return nil
}

// sortedLocked returns matching tasks in ascending id order. This order
// also defines the on-disk record order. Callers must hold the mutex.
func (r *taskRepository) sortedLocked(filter repository.TaskFilter) []domain.Task {
	tasks := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if repository.Matches(task, filter) {
			tasks = append(tasks, cloneTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func cloneTask(task domain.Task) domain.Task {
	if task.DueDate != nil {
		d := *task.DueDate
		task.DueDate = &d
	}
	return task
}
