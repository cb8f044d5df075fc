package services

import (
	"context"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/internal/infrastructure/journal"
	"github.com/fastygo/taskapp/usecase"
)

// JournalBridge parks audit entries in the bolt journal.
type JournalBridge struct {
	store *journal.Store
}

func NewJournalBridge(store *journal.Store) *JournalBridge {
	return &JournalBridge{store: store}
}

func (b *JournalBridge) Record(ctx context.Context, log domain.Log, cause error) error {
	if b == nil || b.store == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := journal.Entry{Log: log}
	if cause != nil {
		entry.Cause = cause.Error()
	}
	return b.store.Append(entry)
}

var _ usecase.AuditJournal = (*JournalBridge)(nil)
