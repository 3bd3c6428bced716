// Package boltdb persists tasks in a local bbolt database. It implements
// the same repository contract as the JSON file backend and keeps its id
// counter at max(existing)+1, recomputed on open.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/repository"
)

var bucketTasks = []byte("tasks")

// TaskRepo is a bbolt-backed task repository. Unlike the JSON backend the
// database file survives Clear; only its contents are dropped.
type TaskRepo struct {
	mu     sync.Mutex
	db     *bolt.DB
	nextID int
	logger *zap.Logger
}

// Open initializes the bbolt file, ensures the tasks bucket exists and
// recomputes the next id from the highest stored key.
func Open(path string, logger *zap.Logger) (*TaskRepo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	r := &TaskRepo{db: db, nextID: 1, logger: logger}
	if err := db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketTasks)
		if err != nil {
			return err
		}
		if key, _ := bucket.Cursor().Last(); key != nil {
			r.nextID = btoi(key) + 1
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

// Close closes the underlying database.
func (r *TaskRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *TaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTasks).Cursor()
		for key, value := c.First(); key != nil; key, value = c.Next() {
			task, err := decodeTask(value)
			if err != nil {
				return err
			}
			if repository.Matches(task, filter) {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepo) GetByID(_ context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketTasks).Get(itob(id))
		if value == nil {
			return domain.NewTaskNotFound(id)
		}
		var err error
		task, err = decodeTask(value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepo) Create(_ context.Context, title, description string, due *domain.Date) (*domain.Task, error) {
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

	if err := r.put(task); err != nil {
		return nil, err
	}
	r.nextID++
	r.logger.Debug("task created", zap.Int("id", task.ID))
	return &task, nil
}

func (r *TaskRepo) Update(_ context.Context, id int, patch repository.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}

	updated, changed, err := repository.Apply(*current, patch)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := r.put(updated); err != nil {
		return nil, err
	}
	r.logger.Debug("task updated", zap.Int("id", id))
	return &updated, nil
}

func (r *TaskRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		key := itob(id)
		if bucket.Get(key) == nil {
			return domain.NewTaskNotFound(id)
		}
		return bucket.Delete(key)
	})
	if err != nil {
		return err
	}
	r.logger.Debug("task deleted", zap.Int("id", id))
	return nil
}

func (r *TaskRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketTasks); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketTasks)
		return err
	})
	if err != nil {
		return err
	}
	r.nextID = 1
	return nil
}

func (r *TaskRepo) put(task domain.Task) error {
	payload, err := json.Marshal(task.ToMap())
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Put(itob(task.ID), payload)
	})
}

func decodeTask(value []byte) (domain.Task, error) {
	var payload map[string]any
	if err := json.Unmarshal(value, &payload); err != nil {
		return domain.Task{}, domain.NewMalformedRecord("stored task is not valid JSON", err)
	}
	return domain.TaskFromMap(payload)
}

// itob encodes ids as big-endian so bolt's key order matches id order.
func itob(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func btoi(key []byte) int {
	return int(binary.BigEndian.Uint64(key))
}
