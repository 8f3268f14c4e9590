package school

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddLog_cap(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	s.opts.MaxLogEntries = 1000

	// the default document starts without logs
	for i := 1; i <= 1005; i++ {
		_, err := s.AddLog(ctx, "admin", fmt.Sprintf("action %d", i), "", "")
		require.NoError(t, err)
	}

	doc := mustDocument(t, s)
	require.Len(t, doc.Logs, 1000)
	assert.Equal(t, "action 6", doc.Logs[0].Action, "oldest entries are evicted first")
	assert.Equal(t, "action 1005", doc.Logs[999].Action)
	assert.Equal(t, LogTypeSystem, doc.Logs[0].Type)
	assert.Equal(t, LogLevelInfo, doc.Logs[0].Level)
}

func TestStore_Logs(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	for i := 1; i <= 3; i++ {
		_, err := s.AddLog(ctx, "bob", fmt.Sprintf("action %d", i), LogTypeUser, LogLevelSuccess)
		require.NoError(t, err)
	}

	logs, err := s.Logs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "action 3", logs[0].Action)
	assert.Equal(t, "action 2", logs[1].Action)
	assert.Less(t, logs[1].ID, logs[0].ID)

	logs, err = s.Logs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestStore_nextID(t *testing.T) {
	s, _ := setup(t)
	s.lastID = nowFunc().UnixMilli() + 10_000 // clock went backwards

	a, b := s.nextID(), s.nextID()
	assert.Greater(t, b, a)
}
