package main

import (
	"log"
	"os"

	"gopkg.in/urfave/cli.v2"
)

const (
	flagDataDir     = "data-dir"
	flagUsersFile   = "users-file"
	flagTasksFile   = "tasks-file"
	flagLogsFile    = "logs-file"
	flagLogLevel    = "log-level"
	flagLogEncoding = "log-encoding"
	flagJournal     = "journal"
	flagJournalPath = "journal-path"

	flagEmail    = "email"
	flagPassword = "password"
	flagCode     = "code"
	flagName     = "name"
	flagAssignee = "assignee"
	flagTo       = "to"
)

var version = "dev"

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    flagDataDir,
		Usage:   "Directory holding the CSV stores.",
		EnvVars: []string{"TASKAPP_DATA_DIR"},
	},
	&cli.StringFlag{
		Name:    flagUsersFile,
		Usage:   "Users store, relative to the data directory unless absolute.",
		EnvVars: []string{"TASKAPP_USERS_FILE"},
	},
	&cli.StringFlag{
		Name:    flagTasksFile,
		Usage:   "Tasks store, relative to the data directory unless absolute.",
		EnvVars: []string{"TASKAPP_TASKS_FILE"},
	},
	&cli.StringFlag{
		Name:    flagLogsFile,
		Usage:   "Audit log store, relative to the data directory unless absolute.",
		EnvVars: []string{"TASKAPP_LOGS_FILE"},
	},
	&cli.StringFlag{
		Name:    flagLogLevel,
		Usage:   "Log level: debug, info, warn or error.",
		EnvVars: []string{"LOG_LEVEL"},
	},
	&cli.StringFlag{
		Name:    flagLogEncoding,
		Usage:   "Log encoding: console or json.",
		EnvVars: []string{"LOG_ENCODING"},
	},
	&cli.BoolFlag{
		Name:    flagJournal,
		Usage:   "Journal audit entries that could not be written.",
		Value:   true,
		EnvVars: []string{"TASKAPP_JOURNAL_ENABLED"},
	},
	&cli.StringFlag{
		Name:    flagJournalPath,
		Usage:   "Journal file, defaults to journal.db in the data directory.",
		EnvVars: []string{"TASKAPP_JOURNAL_PATH"},
	},
}

var credentialFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    flagEmail,
		Usage:   "Email of the acting user.",
		EnvVars: []string{"TASKAPP_EMAIL"},
	},
	&cli.StringFlag{
		Name:    flagPassword,
		Usage:   "Password of the acting user.",
		EnvVars: []string{"TASKAPP_PASSWORD"},
	},
}

func withCredentials(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, credentialFlags...), flags...)
}

var commands = []*cli.Command{
	{
		Name:   "menu",
		Usage:  "Run the interactive task menu",
		Action: runMenu,
	},
	{
		Name:   "list",
		Usage:  "List every task",
		Flags:  withCredentials(),
		Action: runList,
	},
	{
		Name:  "create",
		Usage: "Create a task",
		Flags: withCredentials(
			&cli.IntFlag{Name: flagCode, Usage: "The task code."},
			&cli.StringFlag{Name: flagName, Usage: "The task name, at most 10 characters."},
			&cli.IntFlag{Name: flagAssignee, Usage: "Code of the assigned user."},
		),
		Action: runCreate,
	},
	{
		Name:  "status",
		Usage: "Advance a task to its next status",
		Flags: withCredentials(
			&cli.IntFlag{Name: flagCode, Usage: "The task code."},
			&cli.IntFlag{Name: flagTo, Usage: "The new status: 1 (in progress) or 2 (done)."},
		),
		Action: runStatus,
	},
	{
		Name:  "delete",
		Usage: "Delete a done task and its audit history",
		Flags: withCredentials(
			&cli.IntFlag{Name: flagCode, Usage: "The task code."},
		),
		Action: runDelete,
	},
	{
		Name:   "init",
		Usage:  "Create missing stores holding only their header",
		Action: runInit,
	},
	{
		Name:  "journal",
		Usage: "Inspect or replay journaled audit entries",
		Subcommands: []*cli.Command{
			{
				Name:   "replay",
				Usage:  "Append journaled entries to the audit log",
				Action: runJournalReplay,
			},
			{
				Name:   "size",
				Usage:  "Print the number of journaled entries",
				Action: runJournalSize,
			},
		},
	},
	{
		Name:   "health",
		Usage:  "Read every store and report its record count as JSON",
		Action: runHealth,
	},
	{
		Name:      "hash-password",
		Usage:     "Print a bcrypt hash for seeding the users store",
		ArgsUsage: "<password>",
		Action:    runHashPassword,
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "taskapp",
		Usage:    "Track tasks from not started to done",
		Version:  version,
		Flags:    globalFlags,
		Commands: commands,
		Action:   runMenu,
	}
}

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
