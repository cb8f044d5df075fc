package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/taskapp/domain"
)

// MaxTaskName is the longest task name accepted, in characters.
const MaxTaskName = 10

// Authenticator opens a session from credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// TaskService is the task lifecycle the menu drives.
type TaskService interface {
	ListTasks(ctx context.Context, viewer domain.User) ([]domain.TaskView, error)
	CreateTask(ctx context.Context, code int, name string, assigneeCode int, actor domain.User) (domain.Task, error)
	ChangeStatus(ctx context.Context, code int, to domain.Status, actor domain.User) (domain.Task, error)
	DeleteTask(ctx context.Context, code int) (domain.Task, error)
}

// Menu is the interactive front end: a login loop followed by the main
// and task menus, reading one answer per line.
type Menu struct {
	in      *bufio.Reader
	out     io.Writer
	auth    Authenticator
	tasks   TaskService
	logger  *zap.Logger
	session *domain.Session
}

func New(in io.Reader, out io.Writer, auth Authenticator, tasks TaskService, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		in:     bufio.NewReader(in),
		out:    out,
		auth:   auth,
		tasks:  tasks,
		logger: logger,
	}
}

// Run drives one session until the user logs out or input ends.
func (m *Menu) Run(ctx context.Context) error {
	m.println("Welcome to the task manager!")

	err := m.run(ctx)
	if errors.Is(err, io.EOF) {
		m.logger.Debug("input closed, ending session")
		return nil
	}
	return err
}

func (m *Menu) run(ctx context.Context) error {
	if err := m.login(ctx); err != nil {
		return err
	}

	for {
		m.println("Choose an option from 1 to 3.")
		m.println("1. List tasks, 2. Create task, 3. Log out")
		choice, err := m.prompt(ctx, "Choice: ")
		if err != nil {
			return err
		}
		m.println()

		switch strings.TrimSpace(choice) {
		case "1":
			listed, err := m.listTasks(ctx)
			if err != nil {
				return err
			}
			if listed {
				err = m.taskMenu(ctx)
			}
			if err != nil {
				return err
			}
		case "2":
			if err := m.createTask(ctx); err != nil {
				return err
			}
		case "3":
			m.logger.Info("user signed out", zap.Int("user", m.session.User.Code))
			m.session = nil
			m.println("Logged out.")
			return nil
		default:
			m.println("Invalid choice. Choose from 1 to 3.")
		}
		m.println()
	}
}

func (m *Menu) login(ctx context.Context) error {
	for {
		email, err := m.prompt(ctx, "Email: ")
		if err != nil {
			return err
		}
		password, err := m.prompt(ctx, "Password: ")
		if err != nil {
			return err
		}

		session, err := m.auth.Login(ctx, email, password)
		switch {
		case err == nil:
			m.session = session
			m.println()
			return nil
		case domain.IsDomainError(err, domain.ErrCodeStorageFault):
			// No menu to fall back to without a user.
			m.println(describe(err))
			return err
		case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
			m.println(describe(err))
			m.println()
		default:
			return err
		}
	}
}

// listTasks prints every task and reports whether the task menu should follow.
func (m *Menu) listTasks(ctx context.Context) (bool, error) {
	views, err := m.tasks.ListTasks(ctx, m.session.User)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeStorageFault) {
			m.println(describe(err))
			return false, nil
		}
		return false, err
	}

	if len(views) == 0 {
		m.println("No tasks yet.")
	}
	for _, v := range views {
		m.printf("%d. Name: %s, Assignee: %s, Status: %s\n", v.Task.Code, v.Task.Name, v.AssigneeLabel, v.StatusLabel)
	}
	m.println()
	return true, nil
}

func (m *Menu) taskMenu(ctx context.Context) error {
	for {
		m.println("Choose an option from 1 to 3.")
		m.println("1. Change task status, 2. Delete task, 3. Back to main menu")
		choice, err := m.prompt(ctx, "Choice: ")
		if err != nil {
			return err
		}
		m.println()

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.changeStatus(ctx)
		case "2":
			err = m.deleteTask(ctx)
		case "3":
			return nil
		default:
			m.println("Invalid choice. Choose from 1 to 3.")
		}
		if err != nil {
			return err
		}
		m.println()
	}
}

func (m *Menu) createTask(ctx context.Context) error {
	for {
		code, ok, err := m.promptCode(ctx, "Task code: ", "The task code must be digits only.")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		name, err := m.prompt(ctx, "Task name: ")
		if err != nil {
			return err
		}
		if utf8.RuneCountInString(name) > MaxTaskName {
			m.printf("The task name must be at most %d characters.\n\n", MaxTaskName)
			continue
		}

		assignee, ok, err := m.promptCode(ctx, "Assignee user code: ", "The user code must be digits only.")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		task, err := m.tasks.CreateTask(ctx, code, name, assignee, m.session.User)
		switch next, err := m.settle(err); {
		case err != nil:
			return err
		case next == retry:
			continue
		case next == succeeded:
			m.printf("%s has been registered.\n", task.Name)
		}
		return nil
	}
}

func (m *Menu) changeStatus(ctx context.Context) error {
	for {
		code, ok, err := m.promptCode(ctx, "Code of the task to update: ", "The task code must be digits only.")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		m.println("Choose the new status.")
		m.printf("1. %s, 2. %s\n", domain.StatusInProgress.Label(), domain.StatusDone.Label())
		choice, err := m.prompt(ctx, "Choice: ")
		if err != nil {
			return err
		}
		var to domain.Status
		switch strings.TrimSpace(choice) {
		case "1":
			to = domain.StatusInProgress
		case "2":
			to = domain.StatusDone
		default:
			m.println("Choose the status from 1 or 2.")
			m.println()
			continue
		}

		task, err := m.tasks.ChangeStatus(ctx, code, to, m.session.User)
		switch next, err := m.settle(err); {
		case err != nil:
			return err
		case next == retry:
			continue
		case next == succeeded:
			m.printf("%s is now %s.\n", task.Name, task.Status.Label())
		}
		return nil
	}
}

func (m *Menu) deleteTask(ctx context.Context) error {
	for {
		code, ok, err := m.promptCode(ctx, "Code of the task to delete: ", "The task code must be digits only.")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		task, err := m.tasks.DeleteTask(ctx, code)
		switch next, err := m.settle(err); {
		case err != nil:
			return err
		case next == retry:
			continue
		case next == succeeded:
			m.printf("%s has been deleted.\n", task.Name)
		}
		return nil
	}
}

type outcome int

const (
	succeeded outcome = iota
	retry
	abandoned
)

// settle decides how a form continues after a service call. Rejections are
// printed and the form asks again; storage faults are printed and the form
// is abandoned. Anything else ends the session.
func (m *Menu) settle(err error) (outcome, error) {
	switch {
	case err == nil:
		return succeeded, nil
	case domain.IsDomainError(err, domain.ErrCodeStorageFault):
		m.logger.Error("storage fault", zap.Error(err))
		m.println(describe(err))
		return abandoned, nil
	case domain.CodeOf(err) != "":
		m.println(describe(err))
		m.println()
		return retry, nil
	default:
		return abandoned, err
	}
}
