package school

import (
	"context"

	"github.com/classpoint/assistant/core"
)

func (s *Store) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := s.view(ctx, func(doc *Document) error {
		settings = doc.Settings
		return nil
	})
	return settings, err
}

func (s *Store) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	settings.Theme = core.CleanString(settings.Theme, true /* lower */)
	settings.Language = core.CleanString(settings.Language, true /* lower */)
	if err := s.validateStruct(settings); err != nil {
		return Settings{}, err
	}
	err := s.update(ctx, func(doc *Document) error {
		if settings.Theme == "" {
			settings.Theme = doc.Settings.Theme
		}
		if settings.Language == "" {
			settings.Language = doc.Settings.Language
		}
		doc.Settings = settings
		s.appendLog(doc, "admin", "settings updated", LogTypeSystem, LogLevelInfo)
		return nil
	})
	return settings, err
}

// CheckAdminPassword reports whether pwd opens the admin panel.
func (s *Store) CheckAdminPassword(ctx context.Context, pwd string) (bool, error) {
	var ok bool
	err := s.view(ctx, func(doc *Document) error {
		ok = pwd != "" && pwd == doc.System.AdminPassword
		return nil
	})
	return ok, err
}

func (s *Store) ChangeAdminPassword(ctx context.Context, pwd string) error {
	if pwd == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
	}
	return s.update(ctx, func(doc *Document) error {
		doc.System.AdminPassword = pwd
		s.appendLog(doc, "admin", "admin password changed", LogTypeAuth, LogLevelWarning)
		return nil
	})
}

// SystemInfo returns the system section of the document without the admin password.
func (s *Store) SystemInfo(ctx context.Context) (System, error) {
	var sys System
	err := s.view(ctx, func(doc *Document) error {
		sys = doc.System
		sys.AdminPassword = ""
		return nil
	})
	return sys, err
}
