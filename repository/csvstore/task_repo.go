package csvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository"
)

// ErrDanglingAssignee marks a task whose assignee code matches no user.
var ErrDanglingAssignee = errors.New("assignee does not exist")

type taskRepository struct {
	file  *File
	users repository.UserRepository
}

// NewTaskRepository returns a CSV-backed TaskRepository resolving assignees through users.
func NewTaskRepository(file *File, users repository.UserRepository) repository.TaskRepository {
	return &taskRepository{file: file, users: users}
}

type taskRecord struct {
	code         int
	name         string
	status       domain.Status
	assigneeCode int
}

func (r *taskRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return nil, err
	}

	// Assignees are re-read from the user store once per call.
	resolved := make(map[int]domain.User)
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		rec, err := r.scanTask(row)
		if err != nil {
			return nil, err
		}
		user, ok := resolved[rec.assigneeCode]
		if !ok {
			if user, err = r.assignee(ctx, rec); err != nil {
				return nil, err
			}
			resolved[rec.assigneeCode] = user
		}
		tasks = append(tasks, rec.task(user))
	}
	return tasks, nil
}

// FindByCode scans the whole store; when codes repeat the last record wins.
func (r *taskRepository) FindByCode(ctx context.Context, code int) (domain.Task, bool, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return domain.Task{}, false, err
	}

	var (
		match taskRecord
		found bool
	)
	for _, row := range rows {
		c, err := r.file.intField(row, 0)
		if err != nil {
			return domain.Task{}, false, err
		}
		if c != code {
			continue
		}
		if match, err = r.scanTask(row); err != nil {
			return domain.Task{}, false, err
		}
		found = true
	}
	if !found {
		return domain.Task{}, false, nil
	}

	user, err := r.assignee(ctx, match)
	if err != nil {
		return domain.Task{}, false, err
	}
	return match.task(user), true, nil
}

// Save appends the task. Duplicate codes are not detected here.
func (r *taskRepository) Save(ctx context.Context, task domain.Task) error {
	if !task.Status.Valid() {
		return domain.ErrInvalidPayload
	}
	return r.file.appendRecord(ctx, taskFields(task))
}

// Update rewrites the store with every record coded task.Code replaced.
// Other records are carried over as read.
func (r *taskRepository) Update(ctx context.Context, task domain.Task) error {
	if !task.Status.Valid() {
		return domain.ErrInvalidPayload
	}
	return r.rewriteWhere(ctx, task.Code, taskFields(task))
}

// Delete rewrites the store without the records coded code.
func (r *taskRepository) Delete(ctx context.Context, code int) error {
	return r.rewriteWhere(ctx, code, nil)
}

// rewriteWhere replaces records matching code with replacement, or drops them when replacement is nil.
func (r *taskRepository) rewriteWhere(ctx context.Context, code int, replacement []string) error {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return err
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		c, err := r.file.intField(row, 0)
		if err != nil {
			return err
		}
		switch {
		case c != code:
			records = append(records, row.fields)
		case replacement != nil:
			records = append(records, replacement)
		}
	}
	return r.file.rewrite(ctx, records)
}

func (r *taskRepository) scanTask(row row) (taskRecord, error) {
	code, err := r.file.intField(row, 0)
	if err != nil {
		return taskRecord{}, err
	}
	status, err := r.file.statusField(row, 2)
	if err != nil {
		return taskRecord{}, err
	}
	assignee, err := r.file.intField(row, 3)
	if err != nil {
		return taskRecord{}, err
	}
	return taskRecord{
		code:         code,
		name:         row.fields[1],
		status:       status,
		assigneeCode: assignee,
	}, nil
}

func (r *taskRepository) assignee(ctx context.Context, rec taskRecord) (domain.User, error) {
	user, ok, err := r.users.FindByCode(ctx, rec.assigneeCode)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.StorageFault(
			fmt.Sprintf("task %d references user %d", rec.code, rec.assigneeCode),
			ErrDanglingAssignee,
		)
	}
	return user, nil
}

func (rec taskRecord) task(assignee domain.User) domain.Task {
	return domain.Task{
		Code:     rec.code,
		Name:     rec.name,
		Status:   rec.status,
		Assignee: assignee,
	}
}

func taskFields(task domain.Task) []string {
	return []string{
		itoa(task.Code),
		task.Name,
		itoa(int(task.Status)),
		itoa(task.Assignee.Code),
	}
}
