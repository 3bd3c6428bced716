// Package cli implements the tasklite command-line interface.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/internal/config"
	"github.com/tasklite/tasklite/pkg/logger"
	"github.com/tasklite/tasklite/repository"
	"github.com/tasklite/tasklite/repository/boltdb"
	"github.com/tasklite/tasklite/repository/jsonfile"
	taskUC "github.com/tasklite/tasklite/usecase/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run executes the tasklite CLI and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tasklite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}

	storage := fs.String("storage", "", "Path to the JSON storage file (overrides TASKLITE_STORAGE)")
	backend := fs.String("backend", "", "Storage backend, json or bolt (overrides TASKLITE_BACKEND)")
	logLevel := fs.String("log-level", "", "Log level (overrides LOG_LEVEL)")
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		printUsage(fs, stdout)
		return 0
	}
	if *showVersion {
		fmt.Fprintf(stdout, "tasklite %s\n", Version)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *storage != "" {
		cfg.Storage.Path = *storage
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}
	if cfg.Storage.Backend != config.BackendJSON && cfg.Storage.Backend != config.BackendBolt {
		fmt.Fprintf(stderr, "Error: unknown storage backend %q\n", cfg.Storage.Backend)
		return 1
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer zapLogger.Sync()

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(fs, stderr)
		return 2
	}

	a := &app{
		cfg:    cfg,
		logger: zapLogger,
		stdout: stdout,
		stderr: stderr,
	}

	repo, closeRepo, err := a.openRepository()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeRepo()

	uc := taskUC.New(repo, zapLogger)

	if err := a.dispatch(ctx, uc, rest[0], rest[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %s\n", errorMessage(err))
		return 1
	}
	return 0
}

var errUsage = errors.New("usage error")

func (a *app) dispatch(ctx context.Context, uc *taskUC.UseCase, command string, args []string) error {
	switch command {
	case "list":
		return a.runList(ctx, uc, args)
	case "add":
		return a.runAdd(ctx, uc, args)
	case "show":
		return a.runShow(ctx, uc, args)
	case "update":
		return a.runUpdate(ctx, uc, args)
	case "complete":
		return a.runComplete(ctx, uc, args)
	case "delete":
		return a.runDelete(ctx, uc, args)
	case "clear":
		return a.runClear(ctx, uc, args)
	case "serve":
		return a.runServe(ctx, uc, args)
	default:
		fmt.Fprintf(a.stderr, "Unknown command %q\n", command)
		return errUsage
	}
}

func (a *app) openRepository() (repository.TaskRepository, func() error, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendBolt:
		repo, err := boltdb.Open(a.cfg.Storage.BoltPath, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		repo, err := jsonfile.New(a.cfg.Storage.Path, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	}
}

// errorMessage maps domain errors onto the messages the CLI prints.
func errorMessage(err error) string {
	if id, ok := domain.NotFoundID(err); ok {
		return fmt.Sprintf("task with id %d not found.", id)
	}
	return err.Error()
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklite - manage a list of personal tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: tasklite [options] <command> [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list      Show tasks, optionally filtered")
	fmt.Fprintln(w, "  add       Create a new task")
	fmt.Fprintln(w, "  show      Show one task by id")
	fmt.Fprintln(w, "  update    Change fields of an existing task")
	fmt.Fprintln(w, "  complete  Mark a task done (or undo with --undo)")
	fmt.Fprintln(w, "  delete    Remove a task")
	fmt.Fprintln(w, "  clear     Remove all tasks and the storage file")
	fmt.Fprintln(w, "  serve     Start the local HTTP API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
}
