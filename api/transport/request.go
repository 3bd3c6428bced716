package transport

import "encoding/json"

// TaskCreateRequest is the POST /api/v1/tasks payload. DueDate is an
// ISO-8601 date (YYYY-MM-DD); empty means no due date.
type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// TaskPatchRequest is the PATCH /api/v1/tasks/{id} payload. Fields are
// kept raw so the handler can tell an absent field from an explicit null:
// `"due_date": null` clears the due date, omitting it leaves it alone.
type TaskPatchRequest map[string]json.RawMessage
