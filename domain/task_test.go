package domain

import (
	"testing"
	"time"
)

func TestTaskMapRoundTrip(t *testing.T) {
	due := NewDate(2024, time.June, 1)
	created := time.Date(2024, 5, 20, 9, 30, 0, 123456789, time.UTC)
	task := Task{
		ID:          7,
		Title:       "Ship feature",
		Description: "Cut the release branch",
		Completed:   true,
		DueDate:     &due,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	got, err := TaskFromMap(task.ToMap())
	if err != nil {
		t.Fatalf("TaskFromMap: %v", err)
	}
	if got.ID != task.ID || got.Title != task.Title || got.Description != task.Description || got.Completed != task.Completed {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.DueDate == nil || *got.DueDate != due {
		t.Errorf("due date lost: %v", got.DueDate)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Errorf("timestamps changed: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestTaskToMapNilDueDate(t *testing.T) {
	task := Task{ID: 1, Title: "t", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m := task.ToMap()
	if m["due_date"] != nil {
		t.Errorf("due_date = %v, want nil", m["due_date"])
	}
}

func TestTaskFromMapDefaults(t *testing.T) {
	got, err := TaskFromMap(map[string]any{
		"id":         float64(3), // ids decode as float64 from JSON
		"title":      "Pay invoices",
		"created_at": "2024-01-02T10:00:00Z",
		"updated_at": "2024-01-02T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("TaskFromMap: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("ID = %d, want 3", got.ID)
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want empty", got.Description)
	}
	if got.Completed {
		t.Error("Completed = true, want false")
	}
	if got.DueDate != nil {
		t.Errorf("DueDate = %v, want nil", got.DueDate)
	}
}

func TestTaskFromMapMalformed(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"id":         1,
			"title":      "t",
			"created_at": "2024-01-02T10:00:00Z",
			"updated_at": "2024-01-02T10:00:00Z",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing id", func(m map[string]any) { delete(m, "id") }},
		{"missing title", func(m map[string]any) { delete(m, "title") }},
		{"missing created_at", func(m map[string]any) { delete(m, "created_at") }},
		{"missing updated_at", func(m map[string]any) { delete(m, "updated_at") }},
		{"id not a number", func(m map[string]any) { m["id"] = "one" }},
		{"title not a string", func(m map[string]any) { m["title"] = 12 }},
		{"completed not a bool", func(m map[string]any) { m["completed"] = "yes" }},
		{"due_date not a string", func(m map[string]any) { m["due_date"] = 42.0 }},
		{"due_date unparsable", func(m map[string]any) { m["due_date"] = "June 1st" }},
		{"created_at unparsable", func(m map[string]any) { m["created_at"] = "yesterday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid()
			tt.mutate(payload)
			if _, err := TaskFromMap(payload); !IsDomainError(err, ErrCodeMalformed) {
				t.Errorf("err = %v, want malformed record", err)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got != NewDate(2024, time.June, 1) {
		t.Errorf("got %v", got)
	}
	if got.String() != "2024-06-01" {
		t.Errorf("String() = %q", got.String())
	}

	for _, bad := range []string{"", "01-06-2024", "2024-6-1", "2024-06-01T10:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", bad)
		}
	}
}

func TestDateOrdering(t *testing.T) {
	early := NewDate(2024, time.May, 31)
	late := NewDate(2024, time.June, 1)
	if !early.Before(late) || late.Before(early) {
		t.Error("Before misordered")
	}
	if !late.After(early) || early.After(late) {
		t.Error("After misordered")
	}
	if early.After(early) || early.Before(early) {
		t.Error("equal dates should not order")
	}
	if early.AddDays(1) != late {
		t.Errorf("AddDays: %v", early.AddDays(1))
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.June, 1)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"2024-06-01"` {
		t.Errorf("marshal = %s", data)
	}

	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v", back)
	}
	if err := back.UnmarshalJSON([]byte(`42`)); err == nil {
		t.Error("UnmarshalJSON accepted a number")
	}
}

func TestNotFoundID(t *testing.T) {
	err := NewTaskNotFound(42)
	if id, ok := NotFoundID(err); !ok || id != 42 {
		t.Errorf("NotFoundID = %d, %v", id, ok)
	}
	if _, ok := NotFoundID(ErrEmptyTitle); ok {
		t.Error("NotFoundID matched a validation error")
	}
	if !IsDomainError(err, ErrCodeNotFound) {
		t.Error("IsDomainError failed on not-found")
	}
}
