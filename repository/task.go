package repository

import (
	"context"

	"github.com/fastygo/taskapp/domain"
)

type TaskRepository interface {
	FindAll(ctx context.Context) ([]domain.Task, error)
	FindByCode(ctx context.Context, code int) (domain.Task, bool, error)
	Save(ctx context.Context, task domain.Task) error
	Update(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, code int) error
}
