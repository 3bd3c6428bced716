package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task represents a single unit of work tracked by the application.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	DueDate     *Date     `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToMap returns a JSON-serialisable representation of the task. Timestamps
// are rendered in UTC, the due date as YYYY-MM-DD or nil.
func (t Task) ToMap() map[string]any {
	var due any
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"due_date":    due,
		"created_at":  t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":  t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// TaskFromMap reconstructs a task from a generic payload, typically one
// decoded from the storage file. A missing or unparsable required field
// yields a malformed-record error.
func TaskFromMap(payload map[string]any) (Task, error) {
	id, err := intField(payload, "id")
	if err != nil {
		return Task{}, err
	}

	title, ok, err := stringField(payload, "title")
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, NewMalformedRecord("missing field title", nil)
	}

	description, _, err := stringField(payload, "description")
	if err != nil {
		return Task{}, err
	}

	completed := false
	if raw, present := payload["completed"]; present && raw != nil {
		b, isBool := raw.(bool)
		if !isBool {
			return Task{}, NewMalformedRecord("field completed is not a boolean", nil)
		}
		completed = b
	}

	var due *Date
	if raw, present := payload["due_date"]; present && raw != nil {
		s, isString := raw.(string)
		if !isString {
			return Task{}, NewMalformedRecord("field due_date is not a string", nil)
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return Task{}, NewMalformedRecord("invalid due_date", err)
		}
		due = &parsed
	}

	createdAt, err := timeField(payload, "created_at")
	if err != nil {
		return Task{}, err
	}
	updatedAt, err := timeField(payload, "updated_at")
	if err != nil {
		return Task{}, err
	}

	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   completed,
		DueDate:     due,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func intField(payload map[string]any, key string) (int, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, NewMalformedRecord(fmt.Sprintf("missing field %s", key), nil)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, NewMalformedRecord(fmt.Sprintf("field %s is not an integer", key), err)
		}
		return int(n), nil
	default:
		return 0, NewMalformedRecord(fmt.Sprintf("field %s is not an integer", key), nil)
	}
}

func stringField(payload map[string]any, key string) (string, bool, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", false, NewMalformedRecord(fmt.Sprintf("field %s is not a string", key), nil)
	}
	return s, true, nil
}

func timeField(payload map[string]any, key string) (time.Time, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return time.Time{}, NewMalformedRecord(fmt.Sprintf("missing field %s", key), nil)
	}
	s, isString := raw.(string)
	if !isString {
		return time.Time{}, NewMalformedRecord(fmt.Sprintf("field %s is not a timestamp", key), nil)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, NewMalformedRecord(fmt.Sprintf("invalid timestamp in field %s", key), err)
	}
	return t, nil
}
