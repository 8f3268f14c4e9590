package school

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core"
)

func TestStore_BackupRestore_roundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	bob := mustRegister(t, s, "bob", "Bob B", "7B")
	task := mustAddTask(t, s, "7B", "t1")
	_, _, err := s.CompleteTask(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	_, err = s.AddKnowledge(ctx, "exams", "exam", "June.")
	require.NoError(t, err)

	before := mustDocument(t, s)
	data, err := s.Backup(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Restore(ctx, data))
	after := mustDocument(t, s)

	assert.True(t, after.LastUpdated.After(before.LastUpdated))
	after.LastUpdated = before.LastUpdated
	assert.Equal(t, before, after)
}

func TestStore_Restore_invalid(t *testing.T) {
	ctx := context.Background()
	s, backend := setup(t)
	mustRegister(t, s, "bob", "Bob B", "7B")
	saves := backend.saves

	tests := []struct {
		name       string
		data       string
		wantFields []string
	}{
		{name: "not json", data: `{"version":`},
		{name: "not an object", data: `[1, 2]`},
		{name: "missing keys", data: `{"version":"1.0"}`, wantFields: []string{"users", "classes"}},
		{name: "null users", data: `{"version":"1.0","users":null,"classes":{}}`, wantFields: []string{"users"}},
		{name: "bad users", data: `{"version":"1.0","users":{},"classes":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Restore(ctx, []byte(tt.data))
			vErr, ok := core.AsValidationError(err)
			require.True(t, ok, "want *core.ValidationError, got %v", err)
			if tt.wantFields != nil {
				assert.True(t, errors.Is(err, ErrInvalidBackup))
				fields := make([]string, 0, len(vErr.Fields))
				for _, f := range vErr.Fields {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
	assert.Equal(t, saves, backend.saves, "nothing must be written")
}

func TestStore_Restore_minimal(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	require.NoError(t, s.Restore(ctx, []byte(`{"version":"0.9","users":[],"classes":{"5A":{"name":"5A"}}}`)))
	doc := mustDocument(t, s)
	assert.Equal(t, "0.9", doc.Version)
	assert.NotNil(t, doc.Classes["5A"].Students)
	assert.NotNil(t, doc.Logs)
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	mustRegister(t, s, "bob", "Bob B", "7B")
	require.NoError(t, s.ChangeAdminPassword(ctx, "s3cret"))
	_, err := s.UpdateSettings(ctx, Settings{Theme: "dark", Language: "fr", AutoBackup: true})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	doc := mustDocument(t, s)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Classes)
	assert.Empty(t, doc.AIKnowledge)
	assert.Empty(t, doc.Logs)
	assert.Zero(t, doc.System.TotalLogins)
	assert.Equal(t, "s3cret", doc.System.AdminPassword)
	assert.Equal(t, Settings{Theme: "dark", Language: "fr", AutoBackup: true}, doc.Settings)
}

func TestBackupFilename(t *testing.T) {
	assert.Equal(t, "school-backup-2024-09-02.json", BackupFilename(time.Date(2024, 9, 2, 23, 0, 0, 0, time.UTC)))
}

func TestStore_defaultDocument(t *testing.T) {
	ctx := context.Background()
	s, backend := setup(t)

	_, err := s.Stats(ctx)
	require.NoError(t, err)

	raw, err := backend.Load(ctx, s.Options().DocumentKey)
	require.NoError(t, err, "the default document is saved on first use")

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, k := range []string{"version", "lastUpdated", "users", "classes", "ai_knowledge", "system", "settings", "logs"} {
		assert.Contains(t, keys, k)
	}
	assert.JSONEq(t, `[]`, string(keys["users"]))
	assert.JSONEq(t, `{}`, string(keys["classes"]))
}
