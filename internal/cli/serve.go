package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasklite/tasklite/api/handler"
	"github.com/tasklite/tasklite/internal/middleware"
	"github.com/tasklite/tasklite/internal/router"
	"github.com/tasklite/tasklite/internal/services/lifecycle"
	"github.com/tasklite/tasklite/pkg/httpcontext"
	taskUC "github.com/tasklite/tasklite/usecase/task"
)

// runServe starts the local HTTP API and blocks until a termination
// signal arrives or the server fails.
func (a *app) runServe(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", "", "Listen address (overrides SERVER_HOST/SERVER_PORT)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	address := a.cfg.Address()
	if *addr != "" {
		address = *addr
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
	manager.Listen(cancel)

	ctxAdapter := httpcontext.NewAdapter(a.cfg.Context.RequestTimeout)
	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(uc, ctxAdapter, a.logger),
		Health: apiHandler.NewHealthHandler(uc, a.cfg.Storage.Backend, Version, ctxAdapter, a.logger),
	}
	r := router.New(handlers, middleware.RequestID(a.logger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
		Name:         a.cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("address", address))
		fmt.Fprintf(a.stdout, "Serving tasks on http://%s\n", address)
		if err := server.ListenAndServe(address); err != nil {
			serveErr <- err
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-serveCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		a.logger.Error("graceful shutdown error", zap.Error(err))
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	default:
		return nil
	}
}
