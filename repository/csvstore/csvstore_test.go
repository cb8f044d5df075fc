package csvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskapp/repository/csvstore"
)

const usersFixture = "Code,Name,Email,Password\n" +
	"1,Alice,a@x,p\n" +
	"2,Bob,b@x,secret\n"

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFixture(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// newStores seeds users, tasks and logs files in a temp dir.
func newStores(t *testing.T, users, tasks, logs string) (*csvstore.Stores, csvstore.Paths) {
	t.Helper()

	dir := t.TempDir()
	paths := csvstore.Paths{
		Users: writeFixture(t, dir, "users.csv", users),
		Tasks: writeFixture(t, dir, "tasks.csv", tasks),
		Logs:  writeFixture(t, dir, "logs.csv", logs),
	}
	return csvstore.New(paths), paths
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
