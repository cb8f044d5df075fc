package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository/csvstore"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByCode(ctx context.Context, code int) (domain.User, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) FindByEmailAndPassword(ctx context.Context, email, password string) (domain.User, bool, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Bool(1), args.Error(2)
}

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByCode(ctx context.Context, code int) (domain.Task, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Task), args.Bool(1), args.Error(2)
}

func (m *MockTaskRepository) Save(ctx context.Context, task domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, task domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, code int) error {
	return m.Called(ctx, code).Error(0)
}

// MockLogRepository is a mock implementation of LogRepository.
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Save(ctx context.Context, log domain.Log) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockLogRepository) FindAll(ctx context.Context) ([]domain.Log, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Log), args.Error(1)
}

func (m *MockLogRepository) DeleteByTaskCode(ctx context.Context, taskCode int) error {
	return m.Called(ctx, taskCode).Error(0)
}

// MockAuditJournal is a mock implementation of usecase.AuditJournal.
type MockAuditJournal struct {
	mock.Mock
}

func (m *MockAuditJournal) Record(ctx context.Context, log domain.Log, cause error) error {
	return m.Called(ctx, log, cause).Error(0)
}

var (
	alice = domain.User{Code: 1, Name: "Alice", Email: "a@x", Password: "p"}
	bob   = domain.User{Code: 2, Name: "Bob", Email: "b@x", Password: "q"}
	today = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
)

type mocks struct {
	users   *MockUserRepository
	tasks   *MockTaskRepository
	logs    *MockLogRepository
	journal *MockAuditJournal
}

func newMockedUseCase() (*UseCase, mocks) {
	m := mocks{
		users:   new(MockUserRepository),
		tasks:   new(MockTaskRepository),
		logs:    new(MockLogRepository),
		journal: new(MockAuditJournal),
	}
	uc := New(m.users, m.tasks, m.logs, m.journal, nil)
	uc.now = func() time.Time { return today.Add(15 * time.Hour) }
	return uc, m
}

func (m mocks) assertExpectations(t *testing.T) {
	m.users.AssertExpectations(t)
	m.tasks.AssertExpectations(t)
	m.logs.AssertExpectations(t)
	m.journal.AssertExpectations(t)
}

func TestUseCase_CreateTask(t *testing.T) {
	storeErr := domain.StorageFault("append to tasks.csv", os.ErrPermission)

	tests := []struct {
		name     string
		setup    func(m mocks)
		wantTask domain.Task
		wantCode domain.ErrorCode
	}{
		{
			name: "creates not started task and audits it",
			setup: func(m mocks) {
				m.users.On("FindByCode", mock.Anything, 2).Return(bob, true, nil)
				m.tasks.On("FindByCode", mock.Anything, 10).Return(domain.Task{}, false, nil)
				m.tasks.On("Save", mock.Anything, domain.Task{Code: 10, Name: "Design", Assignee: bob}).Return(nil)
				m.logs.On("Save", mock.Anything, domain.Log{TaskCode: 10, ChangeUserCode: 1, Status: domain.StatusNotStarted, ChangeDate: today}).Return(nil)
			},
			wantTask: domain.Task{Code: 10, Name: "Design", Status: domain.StatusNotStarted, Assignee: bob},
		},
		{
			name: "unknown assignee writes nothing",
			setup: func(m mocks) {
				m.users.On("FindByCode", mock.Anything, 2).Return(domain.User{}, false, nil)
			},
			wantCode: domain.ErrCodeUnknownUser,
		},
		{
			name: "duplicate code writes nothing",
			setup: func(m mocks) {
				m.users.On("FindByCode", mock.Anything, 2).Return(bob, true, nil)
				m.tasks.On("FindByCode", mock.Anything, 10).Return(domain.Task{Code: 10, Name: "Old", Assignee: alice}, true, nil)
			},
			wantCode: domain.ErrCodeDuplicateTask,
		},
		{
			name: "task save failure skips the audit entry",
			setup: func(m mocks) {
				m.users.On("FindByCode", mock.Anything, 2).Return(bob, true, nil)
				m.tasks.On("FindByCode", mock.Anything, 10).Return(domain.Task{}, false, nil)
				m.tasks.On("Save", mock.Anything, mock.Anything).Return(storeErr)
			},
			wantCode: domain.ErrCodeStorageFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newMockedUseCase()
			tt.setup(m)

			got, err := uc.CreateTask(context.Background(), 10, "Design", 2, alice)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.CodeOf(err))
				m.logs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				if tt.wantCode != domain.ErrCodeStorageFault {
					m.tasks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTask, got)
			}
			m.assertExpectations(t)
		})
	}
}

func TestUseCase_ChangeStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  domain.Status
		found    bool
		to       domain.Status
		wantCode domain.ErrorCode
	}{
		{name: "not started to in progress", current: domain.StatusNotStarted, found: true, to: domain.StatusInProgress},
		{name: "in progress to done", current: domain.StatusInProgress, found: true, to: domain.StatusDone},
		{name: "skipping a step", current: domain.StatusNotStarted, found: true, to: domain.StatusDone, wantCode: domain.ErrCodeInvalidTransition},
		{name: "moving backwards", current: domain.StatusDone, found: true, to: domain.StatusInProgress, wantCode: domain.ErrCodeInvalidTransition},
		{name: "same status", current: domain.StatusInProgress, found: true, to: domain.StatusInProgress, wantCode: domain.ErrCodeInvalidTransition},
		{name: "out of range", current: domain.StatusDone, found: true, to: domain.Status(3), wantCode: domain.ErrCodeInvalidTransition},
		{name: "unknown task", found: false, to: domain.StatusInProgress, wantCode: domain.ErrCodeUnknownTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newMockedUseCase()
			stored := domain.Task{Code: 7, Name: "Build", Status: tt.current, Assignee: bob}
			if !tt.found {
				stored = domain.Task{}
			}
			m.tasks.On("FindByCode", mock.Anything, 7).Return(stored, tt.found, nil)

			want := stored
			want.Status = tt.to
			if tt.wantCode == "" {
				m.tasks.On("Update", mock.Anything, want).Return(nil)
				m.logs.On("Save", mock.Anything, domain.Log{TaskCode: 7, ChangeUserCode: 1, Status: tt.to, ChangeDate: today}).Return(nil)
			}

			got, err := uc.ChangeStatus(context.Background(), 7, tt.to, alice)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.CodeOf(err))
				m.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				m.logs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			m.assertExpectations(t)
		})
	}
}

func TestUseCase_DeleteTask(t *testing.T) {
	tests := []struct {
		name     string
		stored   domain.Task
		found    bool
		setup    func(m mocks)
		wantCode domain.ErrorCode
	}{
		{
			name:   "done task and its history are removed",
			stored: domain.Task{Code: 3, Name: "Ship", Status: domain.StatusDone, Assignee: alice},
			found:  true,
			setup: func(m mocks) {
				m.tasks.On("Delete", mock.Anything, 3).Return(nil)
				m.logs.On("DeleteByTaskCode", mock.Anything, 3).Return(nil)
			},
		},
		{
			name:     "unfinished task is kept",
			stored:   domain.Task{Code: 3, Name: "Ship", Status: domain.StatusInProgress, Assignee: alice},
			found:    true,
			wantCode: domain.ErrCodeTaskNotComplete,
		},
		{
			name:     "unknown task",
			wantCode: domain.ErrCodeUnknownTask,
		},
		{
			name:   "history removal failure is a storage fault",
			stored: domain.Task{Code: 3, Name: "Ship", Status: domain.StatusDone, Assignee: alice},
			found:  true,
			setup: func(m mocks) {
				m.tasks.On("Delete", mock.Anything, 3).Return(nil)
				m.logs.On("DeleteByTaskCode", mock.Anything, 3).Return(errors.New("disk full"))
			},
			wantCode: domain.ErrCodeStorageFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newMockedUseCase()
			m.tasks.On("FindByCode", mock.Anything, 3).Return(tt.stored, tt.found, nil)
			if tt.setup != nil {
				tt.setup(m)
			}

			got, err := uc.DeleteTask(context.Background(), 3)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.stored, got)
			}
			if tt.setup == nil {
				m.tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				m.logs.AssertNotCalled(t, "DeleteByTaskCode", mock.Anything, mock.Anything)
			}
			m.assertExpectations(t)
		})
	}
}

func TestUseCase_AuditFailureIsJournaled(t *testing.T) {
	cause := domain.StorageFault("append to logs.csv", os.ErrPermission)
	entry := domain.Log{TaskCode: 7, ChangeUserCode: 1, Status: domain.StatusDone, ChangeDate: today}

	tests := []struct {
		name       string
		journalErr error
		noJournal  bool
		wantMsg    string
	}{
		{name: "journaled", wantMsg: "task 7 saved as Done, audit entry not written (journaled)"},
		{name: "journal failure still reports the fault", journalErr: errors.New("journal locked"), wantMsg: "task 7 saved as Done, audit entry not written:"},
		{name: "no journal configured", noJournal: true, wantMsg: "task 7 saved as Done, audit entry not written:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newMockedUseCase()
			if tt.noJournal {
				uc.journal = nil
			} else {
				m.journal.On("Record", mock.Anything, entry, cause).Return(tt.journalErr)
			}
			m.tasks.On("FindByCode", mock.Anything, 7).Return(domain.Task{Code: 7, Name: "Build", Status: domain.StatusInProgress, Assignee: bob}, true, nil)
			m.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
			m.logs.On("Save", mock.Anything, entry).Return(cause)

			_, err := uc.ChangeStatus(context.Background(), 7, domain.StatusDone, alice)

			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeStorageFault))
			assert.ErrorIs(t, err, os.ErrPermission)
			assert.Contains(t, err.Error(), tt.wantMsg)
			m.assertExpectations(t)
		})
	}
}

func TestUseCase_ListTasks(t *testing.T) {
	uc, m := newMockedUseCase()
	m.tasks.On("FindAll", mock.Anything).Return([]domain.Task{
		{Code: 1, Name: "Plan", Status: domain.StatusDone, Assignee: alice},
		{Code: 2, Name: "Build", Status: domain.StatusInProgress, Assignee: bob},
	}, nil)

	views, err := uc.ListTasks(context.Background(), alice)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "you", views[0].AssigneeLabel)
	assert.Equal(t, "Done", views[0].StatusLabel)
	assert.Equal(t, "Bob", views[1].AssigneeLabel)
	assert.Equal(t, "In progress", views[1].StatusLabel)
	m.assertExpectations(t)
}

func TestUseCase_GetTaskUnknown(t *testing.T) {
	uc, m := newMockedUseCase()
	m.tasks.On("FindByCode", mock.Anything, 99).Return(domain.Task{}, false, nil)

	_, err := uc.GetTask(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	m.assertExpectations(t)
}

// newFileUseCase wires the use case over real CSV stores holding Alice only.
func newFileUseCase(t *testing.T) (*UseCase, csvstore.Paths) {
	t.Helper()

	dir := t.TempDir()
	paths := csvstore.Paths{
		Users: filepath.Join(dir, "users.csv"),
		Tasks: filepath.Join(dir, "tasks.csv"),
		Logs:  filepath.Join(dir, "logs.csv"),
	}
	stores := csvstore.New(paths)
	_, err := stores.Init(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.Users, []byte("Code,Name,Email,Password\n1,Alice,a@x,p"), 0o644))

	uc := New(stores.Users, stores.Tasks, stores.Logs, nil, nil)
	uc.now = func() time.Time { return today }
	return uc, paths
}

func TestUseCase_LifecycleOverFiles(t *testing.T) {
	uc, paths := newFileUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, 10, "Design", 1, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.Task{Code: 10, Name: "Design", Status: domain.StatusNotStarted, Assignee: alice}, created)

	logs, err := uc.logs.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Log{{TaskCode: 10, ChangeUserCode: 1, Status: domain.StatusNotStarted, ChangeDate: today}}, logs)

	_, err = uc.CreateTask(ctx, 10, "Again", 1, alice)
	assert.ErrorIs(t, err, domain.ErrDuplicateTask)

	_, err = uc.DeleteTask(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrTaskNotComplete)

	for _, to := range []domain.Status{domain.StatusInProgress, domain.StatusDone} {
		got, err := uc.ChangeStatus(ctx, 10, to, alice)
		require.NoError(t, err)
		assert.Equal(t, domain.Task{Code: 10, Name: "Design", Status: to, Assignee: alice}, got)
	}

	_, err = uc.ChangeStatus(ctx, 10, domain.StatusDone, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	logs, err = uc.logs.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for i, log := range logs {
		assert.Equal(t, domain.Status(i), log.Status)
		assert.Equal(t, 1, log.ChangeUserCode)
	}

	deleted, err := uc.DeleteTask(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, deleted.Code)

	_, err = uc.GetTask(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	logs, err = uc.logs.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)

	data, err := os.ReadFile(paths.Logs)
	require.NoError(t, err)
	assert.Equal(t, "Code,Change_User_Code,Status,Change_Date\n", string(data))
}

func TestUseCase_UnknownReferencesLeaveFilesUntouched(t *testing.T) {
	uc, paths := newFileUseCase(t)
	ctx := context.Background()

	before := map[string][]byte{}
	for _, p := range []string{paths.Tasks, paths.Logs} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		before[p] = data
	}

	_, err := uc.CreateTask(ctx, 1, "Ghost", 42, alice)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
	_, err = uc.ChangeStatus(ctx, 5, domain.StatusInProgress, alice)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	_, err = uc.DeleteTask(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)

	for p, want := range before {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, want, got, p)
	}
}
