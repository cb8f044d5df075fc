package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	Storage     StorageConfig
	Journal     JournalConfig
	Logger      LoggerConfig
}

// StorageConfig locates the CSV record stores. Relative file names are
// resolved against DataDir.
type StorageConfig struct {
	DataDir   string
	UsersFile string
	TasksFile string
	LogsFile  string
}

type JournalConfig struct {
	Enabled   bool
	Path      string
	BatchSize int
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the tool runs from an empty environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskapp"),
		Environment: getString("APP_ENV", "development"),
		Storage: StorageConfig{
			DataDir:   getString("TASKAPP_DATA_DIR", "./data"),
			UsersFile: getString("TASKAPP_USERS_FILE", "users.csv"),
			TasksFile: getString("TASKAPP_TASKS_FILE", "tasks.csv"),
			LogsFile:  getString("TASKAPP_LOGS_FILE", "logs.csv"),
		},
		Journal: JournalConfig{
			Enabled:   getBool("TASKAPP_JOURNAL_ENABLED", true),
			Path:      os.Getenv("TASKAPP_JOURNAL_PATH"),
			BatchSize: getInt("TASKAPP_JOURNAL_BATCH", 100),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("config: data directory must not be empty")
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("config: unsupported log encoding %q", c.Logger.Encoding)
	}
	if c.Journal.BatchSize <= 0 {
		return fmt.Errorf("config: journal batch size must be positive, got %d", c.Journal.BatchSize)
	}
	return nil
}

func (s StorageConfig) UsersPath() string { return s.resolve(s.UsersFile) }
func (s StorageConfig) TasksPath() string { return s.resolve(s.TasksFile) }
func (s StorageConfig) LogsPath() string  { return s.resolve(s.LogsFile) }

func (s StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// JournalPath returns the bolt file, defaulting to journal.db in the data directory.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Storage.DataDir, "journal.db")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
