package testutil

import (
	"context"
	"testing"

	"github.com/classpoint/assistant/core/school"
	logsvc "github.com/classpoint/assistant/services/logger"
	"github.com/classpoint/assistant/storage/inmem"
)

// NewStore returns a store over a fresh in-memory backend.
func NewStore(t *testing.T) (*school.Store, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.Open()
	return school.NewStore(db, logsvc.NewNopLogger(), school.DefaultOptions()), db
}

func CreateUser(t *testing.T, store *school.Store, login, pwd, name, class, role string) school.User {
	t.Helper()
	usr, err := store.Register(context.Background(), school.NewUser{
		Login:    login,
		Password: pwd,
		Name:     name,
		Class:    class,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTask(t *testing.T, store *school.Store, class, subject, title string) school.Task {
	t.Helper()
	task, err := store.AddTask(context.Background(), school.NewTask{Class: class, Subject: subject, Title: title})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return task
}
