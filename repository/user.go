package repository

import (
	"context"

	"github.com/fastygo/taskapp/domain"
)

// UserRepository is a read-only view over the seeded users.
// Lookups report absence through the boolean, never through the error.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByCode(ctx context.Context, code int) (domain.User, bool, error)
	FindByEmailAndPassword(ctx context.Context, email, password string) (domain.User, bool, error)
}
