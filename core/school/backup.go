package school

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core"
)

// BackupFilename returns the name offered for a backup taken at t.
func BackupFilename(t time.Time) string {
	return "school-backup-" + t.Format("2006-01-02") + ".json"
}

// Backup returns the whole document as indented JSON.
func (s *Store) Backup(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.view(ctx, func(doc *Document) error {
		var err error
		data, err = json.MarshalIndent(doc, "", "  ")
		return errors.Wrap(err, "encoding backup")
	})
	return data, err
}

// Restore replaces the whole document with the one in data.
// data must at least hold the version, users and classes keys.
func (s *Store) Restore(ctx context.Context, data []byte) error {
	doc, err := parseBackup(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.save(ctx, doc); err != nil {
		return err
	}
	s.logger.Info("Document restored from backup", map[string]interface{}{"users": len(doc.Users), "classes": len(doc.Classes)})
	return nil
}

// ParseBackup validates and decodes a backup without touching the store.
func ParseBackup(data []byte) (*Document, error) {
	return parseBackup(data)
}

func parseBackup(data []byte) (*Document, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid backup"))
	}
	var missing []core.FieldError
	for _, k := range []string{"version", "users", "classes"} {
		if v, ok := keys[k]; !ok || string(v) == "null" {
			missing = append(missing, core.FieldError{Field: k, Error: "this field is required"})
		}
	}
	if len(missing) > 0 {
		return nil, core.NewValidationError(ErrInvalidBackup, missing...)
	}

	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid backup"))
	}
	doc.normalize()
	return doc, nil
}

// ClearAll replaces the document with an empty one, keeping only the admin password and settings.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.load(ctx)
	if err != nil {
		return err
	}
	doc := emptyDocument(s.opts)
	doc.System.AdminPassword = old.System.AdminPassword
	doc.Settings = old.Settings
	if err = s.save(ctx, doc); err != nil {
		return err
	}
	s.logger.Warn("All data cleared", map[string]interface{}{"key": s.opts.DocumentKey})
	return nil
}
