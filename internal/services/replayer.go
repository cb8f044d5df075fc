package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/internal/infrastructure/journal"
	"github.com/fastygo/taskapp/repository"
)

// JournalStore abstracts the bolt journal for the replayer.
type JournalStore interface {
	Pending(limit int) ([]journal.Entry, error)
	Update(entry journal.Entry) error
	Remove(entry journal.Entry) error
	Size() (int, error)
}

// ReplayerConfig controls how many entries one run reads.
type ReplayerConfig struct {
	BatchSize int
}

// ReplayResult summarizes one replay run.
type ReplayResult struct {
	Replayed  int
	Dropped   int
	Remaining int
}

// Replayer appends journaled audit entries to the log store. It only runs
// when an operator asks for it.
type Replayer struct {
	store  JournalStore
	tasks  repository.TaskRepository
	logs   repository.LogRepository
	logger *zap.Logger
	cfg    ReplayerConfig
}

func NewReplayer(
	store JournalStore,
	tasks repository.TaskRepository,
	logs repository.LogRepository,
	logger *zap.Logger,
	cfg ReplayerConfig,
) *Replayer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{
		store:  store,
		tasks:  tasks,
		logs:   logs,
		logger: logger,
		cfg:    cfg,
	}
}

// Replay processes one batch, oldest first. Entries whose task is gone are
// dropped. The first failing append stops the run, since the log store is
// then assumed to be broken.
func (r *Replayer) Replay(ctx context.Context) (ReplayResult, error) {
	var result ReplayResult
	if r == nil || r.store == nil {
		return result, nil
	}

	entries, err := r.store.Pending(r.cfg.BatchSize)
	if err != nil {
		return result, fmt.Errorf("read journal: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return r.finish(result, err)
		}

		log := r.logger.With(
			zap.String("entry_id", entry.ID),
			zap.Int("task_code", entry.Log.TaskCode),
			zap.Int("attempts", entry.Attempts),
		)

		_, found, err := r.tasks.FindByCode(ctx, entry.Log.TaskCode)
		if err != nil {
			return r.finish(result, r.fail(log, entry, err))
		}
		if !found {
			log.Warn("dropping journal entry for deleted task")
			if err := r.store.Remove(entry); err != nil {
				return r.finish(result, fmt.Errorf("remove journal entry %s: %w", entry.ID, err))
			}
			result.Dropped++
			continue
		}

		if err := r.logs.Save(ctx, entry.Log); err != nil {
			return r.finish(result, r.fail(log, entry, err))
		}
		if err := r.store.Remove(entry); err != nil {
			// The entry is already in the log store; a later replay would duplicate it.
			log.Error("replayed entry could not be removed from the journal", zap.Error(err))
			return r.finish(result, fmt.Errorf("remove journal entry %s: %w", entry.ID, err))
		}
		result.Replayed++
		log.Info("journal entry replayed")
	}

	return r.finish(result, nil)
}

// Size returns the number of journaled entries.
func (r *Replayer) Size() (int, error) {
	if r == nil || r.store == nil {
		return 0, nil
	}
	return r.store.Size()
}

func (r *Replayer) fail(log *zap.Logger, entry journal.Entry, cause error) error {
	log.Error("failed to replay journal entry", zap.Error(cause))

	entry.Attempts++
	entry.Cause = cause.Error()
	if err := r.store.Update(entry); err != nil {
		log.Warn("failed to record replay attempt", zap.Error(err))
	}
	return domain.StorageFault(fmt.Sprintf("replay journal entry %s", entry.ID), cause)
}

func (r *Replayer) finish(result ReplayResult, err error) (ReplayResult, error) {
	size, serr := r.store.Size()
	if serr != nil {
		r.logger.Warn("failed to read journal size", zap.Error(serr))
	}
	result.Remaining = size
	if err == nil {
		r.logger.Info("journal replay finished",
			zap.Int("replayed", result.Replayed),
			zap.Int("dropped", result.Dropped),
			zap.Int("remaining", result.Remaining))
	}
	return result, err
}
