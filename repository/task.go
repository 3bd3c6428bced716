package repository

import (
	"context"
	"strings"

	"github.com/tasklite/tasklite/domain"
)

// TaskFilter narrows List results. Nil fields mean "no filtering"; set
// fields compose with logical AND.
type TaskFilter struct {
	// Completed, when set, matches tasks whose completion flag equals it.
	Completed *bool
	// DueBefore, when set, matches tasks with a due date on or before it.
	// Tasks without a due date never match.
	DueBefore *domain.Date
}

// OptionalDate is a tri-state due-date parameter: not supplied, supplied
// as null (clear the field), or supplied with a value. A plain pointer
// cannot distinguish "clear" from "leave alone".
type OptionalDate struct {
	Set   bool
	Value *domain.Date
}

// SetDate returns an OptionalDate assigning d.
func SetDate(d domain.Date) OptionalDate {
	return OptionalDate{Set: true, Value: &d}
}

// ClearDate returns an OptionalDate clearing the due date.
func ClearDate() OptionalDate {
	return OptionalDate{Set: true}
}

// TaskPatch describes a partial update. Nil pointers leave the field
// untouched; supplied fields are applied even when the value equals the
// current one.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     OptionalDate
	Completed   *bool
}

// Empty reports whether the patch carries no field at all.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.DueDate.Set && p.Completed == nil
}

// Apply validates patch and returns an updated copy of task. Validation
// runs before any field is assigned so a failing patch changes nothing.
// The changed flag reports whether any field was supplied.
func Apply(task domain.Task, patch TaskPatch) (domain.Task, bool, error) {
	changed := false

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.Task{}, false, domain.ErrEmptyTitle
		}
		task.Title = title
		changed = true
	}

	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
		changed = true
	}

	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			task.DueDate = nil
		} else {
			d := *patch.DueDate.Value
			task.DueDate = &d
		}
		changed = true
	}

	if patch.Completed != nil {
		task.Completed = *patch.Completed
		changed = true
	}

	return task, changed, nil
}

// Matches reports whether task satisfies every set filter field.
func Matches(task domain.Task, filter TaskFilter) bool {
	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	if filter.DueBefore != nil {
		if task.DueDate == nil || task.DueDate.After(*filter.DueBefore) {
			return false
		}
	}
	return true
}

// TaskRepository is the authoritative, id-addressed store of tasks.
type TaskRepository interface {
	// List returns tasks matching filter in ascending id order.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// GetByID returns the task with the given id or a not-found error.
	GetByID(ctx context.Context, id int) (*domain.Task, error)
	// Create validates and stores a new task, assigning the next id.
	Create(ctx context.Context, title, description string, due *domain.Date) (*domain.Task, error)
	// Update applies patch to the task with the given id. An empty patch
	// is a no-op and leaves updated_at and the backing store untouched.
	Update(ctx context.Context, id int, patch TaskPatch) (*domain.Task, error)
	// Delete removes the task with the given id or returns not-found.
	Delete(ctx context.Context, id int) error
	// Clear empties the store and resets the id counter.
	Clear(ctx context.Context) error
}
