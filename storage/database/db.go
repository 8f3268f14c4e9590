package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_key    VARCHAR(128) PRIMARY KEY,
	doc_value  TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// DB stores documents as rows of the documents table.
type DB struct {
	db *sqlx.DB
}

var _ school.Backend = (*DB)(nil) // interface compliance check

var maxPingAttempts = 30

// Open connects to the database configured in conf.Storage and creates the documents table if needed.
func Open(conf *core.Config) (*DB, error) {
	var driver, dsn string
	switch conf.Storage.Engine {
	case EnginePostgres:
		driver, dsn = "postgres", conf.Storage.DSN
	case EngineSQLite:
		driver, dsn = "sqlite", conf.Storage.Path
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Storage.Engine)
	}
	return open(driver, dsn)
}

func open(driver, dsn string) (*DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating documents table")
	}
	return &DB{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	for attempts := 1; attempts <= maxPingAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	q := s.db.Rebind(`SELECT doc_value FROM documents WHERE doc_key = ?`)
	if err := s.db.GetContext(ctx, &value, q, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, school.ErrNoDocument
		}
		return nil, errors.Wrapf(err, "selecting document %q", key)
	}
	return []byte(value), nil
}

func (s *DB) Save(ctx context.Context, key string, data []byte) error {
	q := s.db.Rebind(`
INSERT INTO documents (doc_key, doc_value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (doc_key) DO UPDATE SET doc_value = excluded.doc_value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, key, string(data), time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "upserting document %q", key)
	}
	return nil
}
