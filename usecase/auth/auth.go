package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Authenticate resolves credentials to a user. A mismatch is not an error.
func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (domain.User, bool, error) {
	return uc.users.FindByEmailAndPassword(ctx, email, password)
}

// Login authenticates and opens a session for the console run.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, found, err := uc.Authenticate(ctx, email, password)
	if err != nil {
		uc.logger.Error("failed to look up credentials", zap.Error(err))
		return nil, err
	}
	if !found {
		uc.logger.Info("login rejected", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: uc.now(),
	}
	uc.logger.Info("user signed in", zap.Int("user", user.Code), zap.String("session", session.ID))
	return session, nil
}
