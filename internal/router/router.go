package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasklite/tasklite/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, requestID func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", requestID(handlers.Health.Check))

	r.GET("/api/v1/tasks", requestID(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", requestID(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", requestID(handlers.Task.GetTask))
	r.PATCH("/api/v1/tasks/{id}", requestID(handlers.Task.PatchTask))
	r.DELETE("/api/v1/tasks/{id}", requestID(handlers.Task.DeleteTask))

	return r
}
