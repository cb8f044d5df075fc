package csvstore

import (
	"context"

	"github.com/fastygo/taskapp/repository"
)

// Paths locates the three record stores.
type Paths struct {
	Users string
	Tasks string
	Logs  string
}

// Stores bundles the record stores sharing one set of files.
type Stores struct {
	Users repository.UserRepository
	Tasks repository.TaskRepository
	Logs  repository.LogRepository

	files []*File
}

// New wires the repositories over paths. The task store resolves
// assignees through the user store built here.
func New(paths Paths) *Stores {
	usersFile := NewFile(paths.Users, UsersHeader)
	tasksFile := NewFile(paths.Tasks, TasksHeader)
	logsFile := NewFile(paths.Logs, LogsHeader)

	users := NewUserRepository(usersFile)
	return &Stores{
		Users: users,
		Tasks: NewTaskRepository(tasksFile, users),
		Logs:  NewLogRepository(logsFile),
		files: []*File{usersFile, tasksFile, logsFile},
	}
}

// Init creates every missing store with only its header and returns the paths it created.
func (s *Stores) Init(ctx context.Context) ([]string, error) {
	var created []string
	for _, f := range s.files {
		ok, err := f.Create(ctx)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, f.Path())
		}
	}
	return created, nil
}
