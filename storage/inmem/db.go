package inmemdb

import (
	"context"
	"sync"

	"github.com/classpoint/assistant/core/school"
)

// DB keeps documents in memory. It is used in tests and with the "memory" storage engine.
type DB struct {
	sync.RWMutex
	table map[string][]byte
}

var _ school.Backend = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{table: make(map[string][]byte)}
}

func (db *DB) Load(_ context.Context, key string) ([]byte, error) {
	db.RLock()
	defer db.RUnlock()

	data, ok := db.table[key]
	if !ok {
		return nil, school.ErrNoDocument
	}
	return append([]byte(nil), data...), nil
}

func (db *DB) Save(_ context.Context, key string, data []byte) error {
	db.Lock()
	defer db.Unlock()

	db.table[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key; used by tests to simulate a fresh browser.
func (db *DB) Delete(key string) {
	db.Lock()
	defer db.Unlock()
	delete(db.table, key)
}

func (db *DB) Close() error { return nil }
