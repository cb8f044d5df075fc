package domain_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskapp/domain"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := domain.WrapError(domain.ErrCodeUnknownTask, "task 42 does not exist", nil)
	wrapped := fmt.Errorf("change status: %w", err)

	assert.True(t, errors.Is(wrapped, domain.ErrUnknownTask))
	assert.False(t, errors.Is(wrapped, domain.ErrUnknownUser))
	assert.True(t, domain.IsDomainError(wrapped, domain.ErrCodeUnknownTask))
	assert.Equal(t, domain.ErrCodeUnknownTask, domain.CodeOf(wrapped))
}

func TestStorageFault_UnwrapsCause(t *testing.T) {
	err := domain.StorageFault("read tasks.csv", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Equal(t, "read tasks.csv: unexpected EOF", err.Error())
}

func TestCodeOf_NonDomain(t *testing.T) {
	assert.Equal(t, domain.ErrorCode(""), domain.CodeOf(io.EOF))
	assert.False(t, domain.IsDomainError(nil, domain.ErrCodeInvalid))
}
