package csvstore

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository"
)

type userRepository struct {
	file *File
}

// NewUserRepository returns a CSV-backed, read-only UserRepository.
func NewUserRepository(file *File) repository.UserRepository {
	return &userRepository{file: file}
}

func (r *userRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		code, err := r.file.intField(row, 0)
		if err != nil {
			return nil, err
		}
		users = append(users, scanUser(row, code))
	}
	return users, nil
}

// FindByCode scans the whole store; when codes repeat the last record wins.
func (r *userRepository) FindByCode(ctx context.Context, code int) (domain.User, bool, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return domain.User{}, false, err
	}

	var (
		user  domain.User
		found bool
	)
	for _, row := range rows {
		c, err := r.file.intField(row, 0)
		if err != nil {
			return domain.User{}, false, err
		}
		if c != code {
			continue
		}
		user, found = scanUser(row, c), true
	}
	return user, found, nil
}

// FindByEmailAndPassword returns the first user whose email and password both match.
func (r *userRepository) FindByEmailAndPassword(ctx context.Context, email, password string) (domain.User, bool, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return domain.User{}, false, err
	}

	for _, row := range rows {
		if row.fields[2] != email || !passwordMatches(row.fields[3], password) {
			continue
		}
		code, err := r.file.intField(row, 0)
		if err != nil {
			return domain.User{}, false, err
		}
		return scanUser(row, code), true, nil
	}
	return domain.User{}, false, nil
}

func scanUser(r row, code int) domain.User {
	return domain.User{
		Code:     code,
		Name:     r.fields[1],
		Email:    r.fields[2],
		Password: r.fields[3],
	}
}

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// passwordMatches accepts the seeded plaintext or a bcrypt hash of it.
func passwordMatches(stored, given string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
		}
	}
	return stored == given
}
