package school

import (
	"context"
	"sync"
	"testing"
	"time"
)

type memBackend struct {
	sync.Mutex
	docs  map[string][]byte
	saves int
}

func newMemBackend() *memBackend {
	return &memBackend{docs: make(map[string][]byte)}
}

func (b *memBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.Lock()
	defer b.Unlock()
	data, ok := b.docs[key]
	if !ok {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), data...), nil
}

func (b *memBackend) Save(_ context.Context, key string, data []byte) error {
	b.Lock()
	defer b.Unlock()
	b.docs[key] = append([]byte(nil), data...)
	b.saves++
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// setup returns a store on a fresh in-memory backend with a clock advancing 1s per call.
func setup(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	start := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	var ticks int
	nowFunc = func() time.Time {
		ticks++
		return start.Add(time.Duration(ticks) * time.Second)
	}
	t.Cleanup(func() { nowFunc = time.Now })

	backend := newMemBackend()
	return NewStore(backend, nopLogger{}, DefaultOptions()), backend
}

func mustRegister(t *testing.T, s *Store, login, name, class string) User {
	t.Helper()
	usr, err := s.Register(context.Background(), NewUser{Login: login, Password: "pwd", Name: name, Class: class})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", login, err)
	}
	return usr
}

func mustAddTask(t *testing.T, s *Store, class, title string) Task {
	t.Helper()
	task, err := s.AddTask(context.Background(), NewTask{Class: class, Subject: "Math", Title: title})
	if err != nil {
		t.Fatalf("AddTask(%s) failed: %v", title, err)
	}
	return task
}

func mustDocument(t *testing.T, s *Store) *Document {
	t.Helper()
	var doc *Document
	err := s.view(context.Background(), func(d *Document) error {
		doc = d
		return nil
	})
	if err != nil {
		t.Fatalf("loading document failed: %v", err)
	}
	return doc
}
