package school

import (
	"context"

	"github.com/classpoint/assistant/core"
)

// AddLog appends an audit log entry, keeping only the most recent MaxLogEntries.
func (s *Store) AddLog(ctx context.Context, user, action, typ, level string) (LogEntry, error) {
	var entry LogEntry
	err := s.update(ctx, func(doc *Document) error {
		entry = s.appendLog(doc, user, action, typ, level)
		return nil
	})
	return entry, err
}

// Logs returns up to limit log entries, newest first. limit <= 0 returns them all.
func (s *Store) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	var logs []LogEntry
	err := s.view(ctx, func(doc *Document) error {
		n := len(doc.Logs)
		if limit > 0 && limit < n {
			n = limit
		}
		logs = make([]LogEntry, 0, n)
		for i := len(doc.Logs) - 1; i >= 0 && len(logs) < n; i-- {
			logs = append(logs, doc.Logs[i])
		}
		return nil
	})
	return logs, err
}

// appendLog adds an entry to doc and evicts the oldest ones beyond the cap. Callers must hold s.mu.
func (s *Store) appendLog(doc *Document, user, action, typ, level string) LogEntry {
	if typ = core.CleanString(typ, true /* lower */); typ == "" {
		typ = LogTypeSystem
	}
	if level = core.CleanString(level, true /* lower */); level == "" {
		level = LogLevelInfo
	}
	entry := LogEntry{
		ID:        s.nextID(),
		Timestamp: nowFunc().UTC(),
		User:      user,
		Action:    action,
		Type:      typ,
		Level:     level,
	}
	doc.Logs = append(doc.Logs, entry)

	if max := s.opts.MaxLogEntries; max > 0 && len(doc.Logs) > max {
		kept := make([]LogEntry, max)
		copy(kept, doc.Logs[len(doc.Logs)-max:])
		doc.Logs = kept
	}
	return entry
}
