package csvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository/csvstore"
)

func TestUserRepository_FindByCode(t *testing.T) {
	tests := []struct {
		name      string
		users     string
		code      int
		wantFound bool
		want      domain.User
	}{
		{
			name:      "existing user",
			users:     usersFixture,
			code:      2,
			wantFound: true,
			want:      domain.User{Code: 2, Name: "Bob", Email: "b@x", Password: "secret"},
		},
		{
			name:  "absent user",
			users: usersFixture,
			code:  9,
		},
		{
			name:      "duplicate code last record wins",
			users:     usersFixture + "2,Robert,r@x,pw\n",
			code:      2,
			wantFound: true,
			want:      domain.User{Code: 2, Name: "Robert", Email: "r@x", Password: "pw"},
		},
		{
			name:  "rows with the wrong column count are skipped",
			users: "Code,Name,Email,Password\n3,Carol,c@x\n",
			code:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores, _ := newStores(t, tt.users, "", "")

			got, found, err := stores.Users.FindByCode(context.Background(), tt.code)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRepository_FindByEmailAndPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	users := usersFixture +
		"3,Alias,a@x,p\n" +
		"4,Dana,d@x," + string(hash) + "\n"

	tests := []struct {
		name      string
		email     string
		password  string
		wantFound bool
		wantCode  int
	}{
		{name: "plaintext match", email: "b@x", password: "secret", wantFound: true, wantCode: 2},
		{name: "first match wins", email: "a@x", password: "p", wantFound: true, wantCode: 1},
		{name: "wrong password", email: "b@x", password: "Secret"},
		{name: "unknown email", email: "z@x", password: "p"},
		{name: "bcrypt hash match", email: "d@x", password: "hunter2", wantFound: true, wantCode: 4},
		{name: "bcrypt hash mismatch", email: "d@x", password: "hunter3"},
		{name: "hash itself is not a password", email: "d@x", password: string(hash)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores, _ := newStores(t, users, "", "")

			got, found, err := stores.Users.FindByEmailAndPassword(context.Background(), tt.email, tt.password)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantCode, got.Code)
			}
		})
	}
}

func TestUserRepository_MissingFileIsStorageFault(t *testing.T) {
	file := csvstore.NewFile(filepath.Join(t.TempDir(), "nope.csv"), csvstore.UsersHeader)
	repo := csvstore.NewUserRepository(file)

	_, found, err := repo.FindByCode(context.Background(), 1)

	assert.False(t, found)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStorageFault))
}

func TestUserRepository_MalformedCodeIsStorageFault(t *testing.T) {
	stores, paths := newStores(t, usersFixture+"x,Eve,e@x,p\n", "", "")

	_, _, err := stores.Users.FindByCode(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStorageFault))
	assert.Contains(t, err.Error(), paths.Users+":4: malformed Code")
}

func TestUserRepository_FindAll(t *testing.T) {
	stores, _ := newStores(t, usersFixture+"3,Carol,c@x\n", "", "")

	users, err := stores.Users.FindAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.User{
		{Code: 1, Name: "Alice", Email: "a@x", Password: "p"},
		{Code: 2, Name: "Bob", Email: "b@x", Password: "secret"},
	}, users)
}
