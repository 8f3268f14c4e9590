package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core/school"
)

func TestDB_LoadSave(t *testing.T) {
	ctx := context.Background()
	db := Open()

	_, err := db.Load(ctx, "doc")
	assert.ErrorIs(t, err, school.ErrNoDocument)

	data := []byte(`{"version":"1.0"}`)
	require.NoError(t, db.Save(ctx, "doc", data))
	data[0] = 'X' // callers keep ownership of their buffer

	got, err := db.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0"}`, string(got))

	db.Delete("doc")
	_, err = db.Load(ctx, "doc")
	assert.ErrorIs(t, err, school.ErrNoDocument)
}
