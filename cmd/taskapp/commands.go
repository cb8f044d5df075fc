package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/urfave/cli.v2"

	"github.com/fastygo/taskapp/api/console"
	"github.com/fastygo/taskapp/domain"
)

// stdin feeds the interactive menu.
var stdin io.Reader = os.Stdin

type commandFunc func(ctx context.Context, c *cli.Context, app *application) error

// withApplication builds the application, runs fn under a signal-aware
// context and releases everything afterwards.
func withApplication(fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		app, err := newApplication(c)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := app.closers.WithSignals(context.Background())
		defer cancel()

		return fn(ctx, c, app)
	}
}

var (
	runMenu          = withApplication(menu)
	runList          = withApplication(list)
	runCreate        = withApplication(create)
	runStatus        = withApplication(status)
	runDelete        = withApplication(remove)
	runInit          = withApplication(initStores)
	runJournalReplay = withApplication(journalReplay)
	runJournalSize   = withApplication(journalSize)
	runHealth        = withApplication(health)
)

var errDegraded = errors.New("stores degraded")

func menu(ctx context.Context, c *cli.Context, app *application) error {
	m := console.New(stdin, c.App.Writer, app.auth, app.tasks, app.logger)
	return m.Run(ctx)
}

func list(ctx context.Context, c *cli.Context, app *application) error {
	actor, err := app.signIn(ctx, c)
	if err != nil {
		return err
	}
	views, err := app.tasks.ListTasks(ctx, actor)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tASSIGNEE\tSTATUS")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.Task.Code, v.Task.Name, v.AssigneeLabel, v.StatusLabel)
	}
	return w.Flush()
}

func create(ctx context.Context, c *cli.Context, app *application) error {
	name := c.String(flagName)
	if n := len([]rune(name)); n == 0 || n > console.MaxTaskName {
		return domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("--name must be 1 to %d characters", console.MaxTaskName), nil)
	}
	if c.Int(flagCode) < 0 || c.Int(flagAssignee) < 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "codes must not be negative", nil)
	}

	actor, err := app.signIn(ctx, c)
	if err != nil {
		return err
	}
	task, err := app.tasks.CreateTask(ctx, c.Int(flagCode), name, c.Int(flagAssignee), actor)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s has been registered.\n", task.Name)
	return nil
}

func status(ctx context.Context, c *cli.Context, app *application) error {
	to, err := domain.ParseStatus(c.Int(flagTo))
	if err != nil {
		return err
	}

	actor, err := app.signIn(ctx, c)
	if err != nil {
		return err
	}
	task, err := app.tasks.ChangeStatus(ctx, c.Int(flagCode), to, actor)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is now %s.\n", task.Name, task.Status.Label())
	return nil
}

func remove(ctx context.Context, c *cli.Context, app *application) error {
	if _, err := app.signIn(ctx, c); err != nil {
		return err
	}
	task, err := app.tasks.DeleteTask(ctx, c.Int(flagCode))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s has been deleted.\n", task.Name)
	return nil
}

func initStores(ctx context.Context, c *cli.Context, app *application) error {
	created, err := app.stores.Init(ctx)
	for _, path := range created {
		fmt.Fprintf(c.App.Writer, "created %s\n", path)
	}
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Fprintln(c.App.Writer, "all stores already exist")
	}
	return nil
}

func journalReplay(ctx context.Context, c *cli.Context, app *application) error {
	if app.replayer == nil {
		return errJournalDisabled
	}
	result, err := app.replayer.Replay(ctx)
	fmt.Fprintf(c.App.Writer, "replayed %d, dropped %d, remaining %d\n", result.Replayed, result.Dropped, result.Remaining)
	return err
}

func journalSize(ctx context.Context, c *cli.Context, app *application) error {
	if app.replayer == nil {
		return errJournalDisabled
	}
	size, err := app.replayer.Size()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, size)
	return nil
}

func health(ctx context.Context, c *cli.Context, app *application) error {
	status := app.monitor.Check(ctx)

	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))

	if !status.Healthy {
		return errDegraded
	}
	return nil
}

func runHashPassword(c *cli.Context) error {
	plain := c.Args().First()
	if plain == "" {
		return domain.WrapError(domain.ErrCodeInvalid, "usage: taskapp hash-password <password>", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(hash))
	return nil
}
