package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v2"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/internal/config"
	"github.com/fastygo/taskapp/internal/infrastructure/journal"
	"github.com/fastygo/taskapp/internal/infrastructure/monitor"
	"github.com/fastygo/taskapp/internal/services"
	"github.com/fastygo/taskapp/internal/services/lifecycle"
	"github.com/fastygo/taskapp/pkg/logger"
	"github.com/fastygo/taskapp/repository/csvstore"
	"github.com/fastygo/taskapp/usecase"
	authUC "github.com/fastygo/taskapp/usecase/auth"
	taskUC "github.com/fastygo/taskapp/usecase/task"
)

var errJournalDisabled = errors.New("journal is disabled")

// application holds everything one command needs.
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	stores   *csvstore.Stores
	journal  *journal.Store
	auth     *authUC.UseCase
	tasks    *taskUC.UseCase
	replayer *services.Replayer
	monitor  *monitor.Monitor
	closers  *lifecycle.Manager
}

// Config ==================================

func newConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c.IsSet(flagDataDir) {
		cfg.Storage.DataDir = c.String(flagDataDir)
	}
	if c.IsSet(flagUsersFile) {
		cfg.Storage.UsersFile = c.String(flagUsersFile)
	}
	if c.IsSet(flagTasksFile) {
		cfg.Storage.TasksFile = c.String(flagTasksFile)
	}
	if c.IsSet(flagLogsFile) {
		cfg.Storage.LogsFile = c.String(flagLogsFile)
	}
	if c.IsSet(flagLogLevel) {
		cfg.Logger.Level = c.String(flagLogLevel)
	}
	if c.IsSet(flagLogEncoding) {
		cfg.Logger.Encoding = c.String(flagLogEncoding)
	}
	if c.IsSet(flagJournal) {
		cfg.Journal.Enabled = c.Bool(flagJournal)
	}
	if c.IsSet(flagJournalPath) {
		cfg.Journal.Path = c.String(flagJournalPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Application =============================

func newApplication(c *cli.Context) (*application, error) {
	cfg, err := newConfig(c)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Output:   c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	closers := lifecycle.New(zapLogger)
	closers.Register("logger", func() error {
		_ = zapLogger.Sync()
		return nil
	})

	app := &application{
		cfg:     cfg,
		logger:  zapLogger,
		closers: closers,
		stores: csvstore.New(csvstore.Paths{
			Users: cfg.Storage.UsersPath(),
			Tasks: cfg.Storage.TasksPath(),
			Logs:  cfg.Storage.LogsPath(),
		}),
	}

	var audit usecase.AuditJournal
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.JournalPath(), journal.DefaultBucket)
		if err != nil {
			_ = closers.Close()
			return nil, err
		}
		closers.Register("journal", store.Close)
		app.journal = store
		audit = services.NewJournalBridge(store)
		app.replayer = services.NewReplayer(
			store,
			app.stores.Tasks,
			app.stores.Logs,
			zapLogger,
			services.ReplayerConfig{BatchSize: cfg.Journal.BatchSize},
		)
	}

	app.auth = authUC.New(app.stores.Users, zapLogger)
	app.tasks = taskUC.New(app.stores.Users, app.stores.Tasks, app.stores.Logs, audit, zapLogger)
	app.monitor = monitor.New(zapLogger, app.probes()...)

	return app, nil
}

// probes reads each store in full, so malformed rows count as failures.
func (a *application) probes() []monitor.Probe {
	probes := []monitor.Probe{
		{Name: "users", Check: func(ctx context.Context) (int, error) {
			users, err := a.stores.Users.FindAll(ctx)
			return len(users), err
		}},
		{Name: "tasks", Check: func(ctx context.Context) (int, error) {
			tasks, err := a.stores.Tasks.FindAll(ctx)
			return len(tasks), err
		}},
		{Name: "logs", Check: func(ctx context.Context) (int, error) {
			logs, err := a.stores.Logs.FindAll(ctx)
			return len(logs), err
		}},
	}
	if a.journal != nil {
		probes = append(probes, monitor.Probe{Name: "journal", Check: func(context.Context) (int, error) {
			return a.journal.Size()
		}})
	}
	return probes
}

func (a *application) Close() error {
	return a.closers.Close()
}

// signIn authenticates the acting user of a one-shot command.
func (a *application) signIn(ctx context.Context, c *cli.Context) (domain.User, error) {
	email := c.String(flagEmail)
	if email == "" {
		return domain.User{}, domain.WrapError(domain.ErrCodeInvalid, "--email or TASKAPP_EMAIL is required", nil)
	}
	session, err := a.auth.Login(ctx, email, c.String(flagPassword))
	if err != nil {
		return domain.User{}, err
	}
	actor, _ := session.Actor()
	return actor, nil
}
