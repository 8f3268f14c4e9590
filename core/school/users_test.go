package school

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core"
)

func TestStore_Register(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	usr, err := s.Register(ctx, NewUser{Login: " Bob ", Password: "x", Name: "Bob B", Class: "7B"})
	require.NoError(t, err)
	assert.Equal(t, "bob", usr.Login)
	assert.Equal(t, "BB", usr.Avatar)
	assert.Equal(t, RoleStudent, usr.Role)
	assert.Equal(t, 0, usr.Points)
	assert.Equal(t, 1, usr.Level)
	assert.Empty(t, usr.TasksCompleted)
	assert.Empty(t, usr.Password, "password must not be returned")

	doc := mustDocument(t, s)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "x", doc.Users[0].Password)
	require.Contains(t, doc.Classes, "7B")
	assert.Equal(t, []StudentEntry{{ID: usr.ID, Name: "Bob B", Points: 0, Avatar: "BB"}}, doc.Classes["7B"].Students)
	assert.Equal(t, "bob", doc.Logs[len(doc.Logs)-1].User)
}

func TestStore_Register_validation(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	mustRegister(t, s, "bob", "Bob B", "7B")

	tests := []struct {
		name      string
		data      NewUser
		wantField string
		wantErr   error
	}{
		{name: "duplicate login", data: NewUser{Login: "BOB", Password: "y", Name: "Other", Class: "7A"}, wantField: "login", wantErr: ErrDuplicateLogin},
		{name: "missing login", data: NewUser{Password: "y", Name: "Other", Class: "7A"}, wantField: "login"},
		{name: "missing password", data: NewUser{Login: "ann", Name: "Ann", Class: "7A"}, wantField: "password"},
		{name: "password mismatch", data: NewUser{Login: "ann", Password: "a", PasswordConfirm: "b", Name: "Ann", Class: "7A"}, wantField: "password_confirm"},
		{name: "student without class", data: NewUser{Login: "ann", Password: "a", Name: "Ann"}, wantField: "class"},
		{name: "unknown role", data: NewUser{Login: "ann", Password: "a", Name: "Ann", Role: "teacher"}, wantField: "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mustDocument(t, s)

			_, err := s.Register(ctx, tt.data)
			vErr, ok := core.AsValidationError(err)
			require.True(t, ok, "want *core.ValidationError, got %v", err)
			require.NotEmpty(t, vErr.Fields)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}

			after := mustDocument(t, s)
			assert.Equal(t, before, after, "store must be left unchanged")
		})
	}
}

func TestStore_Register_admin(t *testing.T) {
	s, _ := setup(t)
	usr, err := s.Register(context.Background(), NewUser{Login: "root", Password: "x", Name: "Head Teacher", Role: "Admin"})
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	assert.Empty(t, mustDocument(t, s).Classes, "admins are not listed as students")
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	bob := mustRegister(t, s, "bob", "Bob B", "7B")

	tests := []struct {
		name    string
		login   string
		pwd     string
		wantErr error
	}{
		{name: "wrong password", login: "bob", pwd: "nope", wantErr: ErrNotFound},
		{name: "unknown login", login: "ann", pwd: "pwd", wantErr: ErrNotFound},
		{name: "ok", login: "bob", pwd: "pwd"},
		{name: "login is case-insensitive", login: " BOB ", pwd: "pwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := s.Login(ctx, tt.login, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, bob.ID, usr.ID)
			assert.Empty(t, usr.Password)
			assert.True(t, usr.IsActive)
			assert.NotNil(t, usr.LastLogin)
		})
	}
	assert.Equal(t, 2, mustDocument(t, s).System.TotalLogins)
}

func TestStore_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	bob := mustRegister(t, s, "bob", "Bob B", "7B")
	mustRegister(t, s, "ann", "Ann A", "7B")

	sp := func(s string) *string { return &s }
	ip := func(i int) *int { return &i }

	t.Run("not found", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, 1, UpdateUser{Name: sp("X")})
		assert.Equal(t, ErrNotFound, err)
	})
	t.Run("duplicate login", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, bob.ID, UpdateUser{Login: sp("ann")})
		assert.True(t, errors.Is(err, ErrDuplicateLogin))
	})
	t.Run("blank name", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, bob.ID, UpdateUser{Name: sp("  ")})
		_, ok := core.AsValidationError(err)
		assert.True(t, ok)
	})
	t.Run("merge & propagate", func(t *testing.T) {
		usr, err := s.UpdateUser(ctx, bob.ID, UpdateUser{Name: sp("Robert Brown"), Points: ip(120)})
		require.NoError(t, err)
		assert.Equal(t, "bob", usr.Login, "unset fields are kept")
		assert.Equal(t, "RB", usr.Avatar)
		assert.Equal(t, 120, usr.Points)

		doc := mustDocument(t, s)
		assert.Equal(t, StudentEntry{ID: bob.ID, Name: "Robert Brown", Points: 120, Avatar: "RB"}, doc.Classes["7B"].Students[0])
	})
	t.Run("class change moves student entry", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, bob.ID, UpdateUser{Class: sp("8A")})
		require.NoError(t, err)

		doc := mustDocument(t, s)
		assert.Len(t, doc.Classes["7B"].Students, 1)
		require.Len(t, doc.Classes["8A"].Students, 1)
		assert.Equal(t, bob.ID, doc.Classes["8A"].Students[0].ID)
	})
}

func TestStore_DeleteUser(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	bob := mustRegister(t, s, "bob", "Bob B", "7B")

	require.NoError(t, s.DeleteUser(ctx, bob.ID))
	assert.Equal(t, ErrNotFound, s.DeleteUser(ctx, bob.ID))

	doc := mustDocument(t, s)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Classes["7B"].Students)

	_, err := s.GetUser(ctx, bob.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_ListUsers(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	mustRegister(t, s, "bob", "Bob B", "7B")
	mustRegister(t, s, "ann", "Ann A", "8A")
	_, err := s.Register(ctx, NewUser{Login: "root", Password: "x", Name: "Admin", Role: RoleAdmin})
	require.NoError(t, err)

	logins := func(filter UserFilter) []string {
		users, err := s.ListUsers(ctx, filter)
		require.NoError(t, err)
		res := make([]string, 0, len(users))
		for _, u := range users {
			assert.Empty(t, u.Password)
			res = append(res, u.Login)
		}
		return res
	}
	assert.Equal(t, []string{"bob", "ann", "root"}, logins(UserFilter{}))
	assert.Equal(t, []string{"ann"}, logins(UserFilter{Class: "8A"}))
	assert.Equal(t, []string{"root"}, logins(UserFilter{Role: RoleAdmin}))
	assert.Equal(t, []string{"bob"}, logins(UserFilter{Search: "BOB b"}))
}

func TestStore_ResetPassword(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	mustRegister(t, s, "bob", "Bob B", "7B")

	assert.Equal(t, ErrNotFound, s.ResetPassword(ctx, "ann", "new"))
	require.NoError(t, s.ResetPassword(ctx, "bob", "new"))

	_, err := s.Login(ctx, "bob", "pwd")
	assert.Equal(t, ErrNotFound, err)
	_, err = s.Login(ctx, "bob", "new")
	assert.NoError(t, err)
}

func TestAvatar(t *testing.T) {
	tests := map[string]string{
		"Bob B":             "BB",
		"ann":               "A",
		"  élodie  durand ": "ÉD",
		"Jean Paul Sartre":  "JP",
		"":                  "?",
	}
	for name, want := range tests {
		assert.Equal(t, want, Avatar(name), name)
	}
}
