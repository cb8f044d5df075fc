package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskapp/domain"
	appLogger "github.com/fastygo/taskapp/pkg/logger"
	"github.com/fastygo/taskapp/repository"
	"github.com/fastygo/taskapp/usecase"
)

// UseCase drives the task lifecycle: NotStarted, InProgress, Done.
// Every mutation is followed by an audit entry in the log store.
type UseCase struct {
	users   repository.UserRepository
	tasks   repository.TaskRepository
	logs    repository.LogRepository
	journal usecase.AuditJournal
	logger  *zap.Logger
	now     func() time.Time
}

func New(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	logs repository.LogRepository,
	journal usecase.AuditJournal,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		tasks:   tasks,
		logs:    logs,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, viewer domain.User) ([]domain.TaskView, error) {
	ctx, log := uc.begin(ctx, "list_tasks")

	tasks, err := uc.tasks.FindAll(ctx)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		return nil, err
	}

	views := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, t.View(viewer))
	}
	return views, nil
}

func (uc *UseCase) GetTask(ctx context.Context, code int) (domain.Task, error) {
	ctx, log := uc.begin(ctx, "get_task")
	return uc.findTask(ctx, log, code)
}

// CreateTask stores a new NotStarted task assigned to assigneeCode and audits it under actor.
func (uc *UseCase) CreateTask(ctx context.Context, code int, name string, assigneeCode int, actor domain.User) (domain.Task, error) {
	ctx, log := uc.begin(ctx, "create_task")
	log = log.With(zap.Int("task_code", code), zap.Int("actor", actor.Code))

	assignee, found, err := uc.users.FindByCode(ctx, assigneeCode)
	if err != nil {
		log.Error("failed to resolve assignee", zap.Error(err))
		return domain.Task{}, err
	}
	if !found {
		log.Info("assignee does not exist", zap.Int("assignee", assigneeCode))
		return domain.Task{}, domain.WrapError(domain.ErrCodeUnknownUser, fmt.Sprintf("user %d does not exist", assigneeCode), nil)
	}

	_, exists, err := uc.tasks.FindByCode(ctx, code)
	if err != nil {
		log.Error("failed to check task code", zap.Error(err))
		return domain.Task{}, err
	}
	if exists {
		log.Info("task code already in use")
		return domain.Task{}, domain.WrapError(domain.ErrCodeDuplicateTask, fmt.Sprintf("task %d already exists", code), nil)
	}

	task := domain.Task{
		Code:     code,
		Name:     name,
		Status:   domain.StatusNotStarted,
		Assignee: assignee,
	}
	if err := uc.tasks.Save(ctx, task); err != nil {
		log.Error("failed to save task", zap.Error(err))
		return domain.Task{}, err
	}
	if err := uc.audit(ctx, log, task, actor); err != nil {
		return domain.Task{}, err
	}

	log.Info("task created", zap.Int("assignee", assignee.Code))
	return task, nil
}

// ChangeStatus advances a task by exactly one step and audits the new status under actor.
func (uc *UseCase) ChangeStatus(ctx context.Context, code int, to domain.Status, actor domain.User) (domain.Task, error) {
	ctx, log := uc.begin(ctx, "change_status")
	log = log.With(zap.Int("task_code", code), zap.Int("actor", actor.Code))

	task, err := uc.findTask(ctx, log, code)
	if err != nil {
		return domain.Task{}, err
	}
	if !task.CanAdvanceTo(to) {
		log.Info("rejected status transition", zap.Stringer("from", task.Status), zap.Stringer("to", to))
		return domain.Task{}, domain.WrapError(
			domain.ErrCodeInvalidTransition,
			fmt.Sprintf("task %d cannot move from %s to %s", code, task.Status.Label(), to.Label()),
			nil,
		)
	}

	task.Status = to
	if err := uc.tasks.Update(ctx, task); err != nil {
		log.Error("failed to update task", zap.Error(err))
		return domain.Task{}, err
	}
	if err := uc.audit(ctx, log, task, actor); err != nil {
		return domain.Task{}, err
	}

	log.Info("task status changed", zap.Stringer("status", to))
	return task, nil
}

// DeleteTask removes a Done task together with its whole audit history.
func (uc *UseCase) DeleteTask(ctx context.Context, code int) (domain.Task, error) {
	ctx, log := uc.begin(ctx, "delete_task")
	log = log.With(zap.Int("task_code", code))

	task, err := uc.findTask(ctx, log, code)
	if err != nil {
		return domain.Task{}, err
	}
	if !task.IsCompleted() {
		log.Info("refused to delete unfinished task", zap.Stringer("status", task.Status))
		return domain.Task{}, domain.WrapError(
			domain.ErrCodeTaskNotComplete,
			fmt.Sprintf("task %d is %s, only done tasks can be deleted", code, task.Status.Label()),
			nil,
		)
	}

	if err := uc.tasks.Delete(ctx, code); err != nil {
		log.Error("failed to delete task", zap.Error(err))
		return domain.Task{}, err
	}
	if err := uc.logs.DeleteByTaskCode(ctx, code); err != nil {
		log.Error("task deleted but its audit entries remain", zap.Error(err))
		return domain.Task{}, domain.StorageFault(fmt.Sprintf("task %d deleted, audit entries not removed", code), err)
	}

	log.Info("task deleted")
	return task, nil
}

func (uc *UseCase) findTask(ctx context.Context, log *zap.Logger, code int) (domain.Task, error) {
	task, found, err := uc.tasks.FindByCode(ctx, code)
	if err != nil {
		log.Error("failed to load task", zap.Error(err))
		return domain.Task{}, err
	}
	if !found {
		log.Info("task does not exist", zap.Int("task_code", code))
		return domain.Task{}, domain.WrapError(domain.ErrCodeUnknownTask, fmt.Sprintf("task %d does not exist", code), nil)
	}
	return task, nil
}

// audit appends the entry for task's current status. When the append fails
// the primary write has already happened, so the entry goes to the journal
// and the caller gets a StorageFault describing the partial state.
func (uc *UseCase) audit(ctx context.Context, log *zap.Logger, task domain.Task, actor domain.User) error {
	entry := domain.NewLog(task, actor, uc.now())
	err := uc.logs.Save(ctx, entry)
	if err == nil {
		return nil
	}

	log.Error("failed to append audit entry", zap.Error(err))
	msg := fmt.Sprintf("task %d saved as %s, audit entry not written", task.Code, task.Status.Label())
	if uc.journal != nil {
		if jerr := uc.journal.Record(ctx, entry, err); jerr != nil {
			log.Error("failed to journal audit entry", zap.Error(jerr))
		} else {
			log.Warn("audit entry journaled for replay")
			msg += " (journaled)"
		}
	}
	return domain.StorageFault(msg, err)
}

func (uc *UseCase) begin(ctx context.Context, operation string) (context.Context, *zap.Logger) {
	if appLogger.OperationID(ctx) == "" {
		ctx = appLogger.ContextWithOperationID(ctx, uuid.NewString())
	}
	return ctx, appLogger.WithOperationID(ctx, uc.logger).With(zap.String("operation", operation))
}
