// Package task orchestrates repository calls on behalf of the CLI and
// HTTP transports.
package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, title, description string, due *domain.Date) (*domain.Task, error) {
	created, err := uc.tasks.Create(ctx, title, description, due)
	if err != nil {
		uc.logger.Debug("create task rejected", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("task created", zap.Int("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, id int, patch repository.TaskPatch) (*domain.Task, error) {
	updated, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		uc.logger.Debug("update task rejected", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("task updated", zap.Int("id", id))
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id int) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		uc.logger.Debug("delete task rejected", zap.Int("id", id), zap.Error(err))
		return err
	}
	uc.logger.Info("task deleted", zap.Int("id", id))
	return nil
}

func (uc *UseCase) ClearTasks(ctx context.Context) error {
	if err := uc.tasks.Clear(ctx); err != nil {
		return err
	}
	uc.logger.Info("task store cleared")
	return nil
}
