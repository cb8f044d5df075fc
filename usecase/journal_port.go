package usecase

import (
	"context"

	"github.com/fastygo/taskapp/domain"
)

// AuditJournal keeps audit entries whose append to the log store failed,
// so use cases stay unaware of where they are parked.
type AuditJournal interface {
	Record(ctx context.Context, log domain.Log, cause error) error
}
