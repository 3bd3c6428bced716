package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklite/tasklite/api/transport"
	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/pkg/httpcontext"
	"github.com/tasklite/tasklite/repository"
	taskUC "github.com/tasklite/tasklite/usecase/task"
)

type HealthHandler struct {
	baseHandler
	uc      *taskUC.UseCase
	backend string
	version string
}

func NewHealthHandler(uc *taskUC.UseCase, backend, version string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		backend:     backend,
		version:     version,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"backend":   h.backend,
		"version":   h.version,
	}

	tasks, err := h.uc.ListTasks(stdCtx, repository.TaskFilter{})
	if err != nil {
		h.respondJSON(ctx, http.StatusServiceUnavailable,
			transport.NewError(string(domain.ErrCodeInternal), "storage unavailable"))
		return
	}
	payload["storage"] = "ok"
	payload["tasks"] = len(tasks)
	h.respondSuccess(ctx, http.StatusOK, payload)
}
