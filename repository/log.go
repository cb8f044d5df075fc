package repository

import (
	"context"

	"github.com/fastygo/taskapp/domain"
)

// LogRepository is the append-only audit trail.
type LogRepository interface {
	Save(ctx context.Context, log domain.Log) error
	FindAll(ctx context.Context) ([]domain.Log, error)
	DeleteByTaskCode(ctx context.Context, taskCode int) error
}
