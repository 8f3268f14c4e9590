package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
)

func openSQLite(t *testing.T) *DB {
	conf := &core.Config{Storage: core.StorageConfig{
		Engine: EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "data", "assistant.sqlite"),
	}}
	db, err := Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_LoadSave(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.Load(ctx, "doc")
	assert.ErrorIs(t, err, school.ErrNoDocument)

	require.NoError(t, db.Save(ctx, "doc", []byte(`{"version":"1.0"}`)))
	require.NoError(t, db.Save(ctx, "doc", []byte(`{"version":"1.1"}`))) // upsert

	got, err := db.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.1"}`, string(got))
}

func TestOpen_UnsupportedEngine(t *testing.T) {
	_, err := Open(&core.Config{Storage: core.StorageConfig{Engine: "mongo"}})
	assert.EqualError(t, err, `unsupported database engine "mongo"`)
}
