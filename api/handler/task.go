package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklite/tasklite/api/transport"
	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/pkg/httpcontext"
	"github.com/tasklite/tasklite/repository"
	taskUC "github.com/tasklite/tasklite/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	filter, err := parseFilter(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	var due *domain.Date
	if req.DueDate != "" {
		parsed, err := domain.ParseDate(req.DueDate)
		if err != nil {
			h.respondError(ctx, domain.NewTypeError("due_date must be a YYYY-MM-DD date"))
			return
		}
		due = &parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, req.Title, req.Description, due)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Patch task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) PatchTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	patch, err := buildPatch(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "task id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func parseFilter(ctx *fasthttp.RequestCtx) (repository.TaskFilter, error) {
	var filter repository.TaskFilter

	switch completed := string(ctx.QueryArgs().Peek("completed")); completed {
	case "", "all":
	case "yes", "true":
		v := true
		filter.Completed = &v
	case "no", "false":
		v := false
		filter.Completed = &v
	default:
		return filter, domain.NewError(domain.ErrCodeInvalid, "completed must be yes, no or all")
	}

	if raw := string(ctx.QueryArgs().Peek("due_before")); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			return filter, domain.NewTypeError("due_before must be a YYYY-MM-DD date")
		}
		filter.DueBefore = &parsed
	}

	return filter, nil
}

// buildPatch converts the raw PATCH body into a repository patch,
// preserving the distinction between absent fields and explicit nulls.
func buildPatch(req transport.TaskPatchRequest) (repository.TaskPatch, error) {
	var patch repository.TaskPatch

	if raw, ok := req["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return patch, domain.NewTypeError("title must be a string")
		}
		patch.Title = &title
	}

	if raw, ok := req["description"]; ok {
		description := ""
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &description); err != nil {
				return patch, domain.NewTypeError("description must be a string")
			}
		}
		patch.Description = &description
	}

	if raw, ok := req["due_date"]; ok {
		if string(raw) == "null" {
			patch.DueDate = repository.ClearDate()
		} else {
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				return patch, domain.NewTypeError("due_date must be a YYYY-MM-DD date or null")
			}
			parsed, err := domain.ParseDate(value)
			if err != nil {
				return patch, domain.NewTypeError("due_date must be a YYYY-MM-DD date or null")
			}
			patch.DueDate = repository.SetDate(parsed)
		}
	}

	if raw, ok := req["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return patch, domain.NewTypeError("completed must be a boolean")
		}
		patch.Completed = &completed
	}

	return patch, nil
}
