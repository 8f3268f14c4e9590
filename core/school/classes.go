package school

import (
	"context"

	"github.com/classpoint/assistant/core"
)

// ClassSummary is the listing view of a class record.
type ClassSummary struct {
	Name     string `json:"name"`
	Students int    `json:"students"`
	Tasks    int    `json:"tasks"`
	Lessons  int    `json:"lessons"`
}

// ListClasses returns a summary of every class, sorted by name.
func (s *Store) ListClasses(ctx context.Context) ([]ClassSummary, error) {
	var classes []ClassSummary
	err := s.view(ctx, func(doc *Document) error {
		classes = make([]ClassSummary, 0, len(doc.Classes))
		for _, name := range doc.classNames() {
			c := doc.Classes[name]
			classes = append(classes, ClassSummary{
				Name:     name,
				Students: len(c.Students),
				Tasks:    len(c.Tasks),
				Lessons:  len(c.Schedule),
			})
		}
		return nil
	})
	return classes, err
}

// GetClass returns a copy of the class record named name.
func (s *Store) GetClass(ctx context.Context, name string) (ClassRecord, error) {
	var class ClassRecord
	err := s.view(ctx, func(doc *Document) error {
		c, ok := doc.Classes[core.CleanString(name)]
		if !ok {
			return ErrClassNotFound
		}
		class = ClassRecord{
			Name:     c.Name,
			Students: append([]StudentEntry{}, c.Students...),
			Tasks:    append([]Task{}, c.Tasks...),
			Schedule: append([]ScheduleEntry{}, c.Schedule...),
		}
		return nil
	})
	return class, err
}

// AddScheduleEntry adds a lesson to the schedule of class, creating the class if absent.
func (s *Store) AddScheduleEntry(ctx context.Context, class string, ns NewScheduleEntry) (ScheduleEntry, error) {
	class = core.CleanString(class)
	ns.Clean()
	if class == "" {
		return ScheduleEntry{}, core.NewValidationError(nil, core.FieldError{Field: "class", Error: "this field is required"})
	}
	if err := s.validateStruct(ns); err != nil {
		return ScheduleEntry{}, err
	}

	var entry ScheduleEntry
	err := s.update(ctx, func(doc *Document) error {
		entry = ScheduleEntry{
			ID:      s.nextID(),
			Day:     ns.Day,
			Time:    ns.Time,
			Subject: ns.Subject,
			Teacher: ns.Teacher,
			Room:    ns.Room,
		}
		rec := doc.ensureClass(class)
		rec.Schedule = append(rec.Schedule, entry)
		return nil
	})
	return entry, err
}

// Schedule returns the lessons of class.
func (s *Store) Schedule(ctx context.Context, class string) ([]ScheduleEntry, error) {
	rec, err := s.GetClass(ctx, class)
	if err != nil {
		return nil, err
	}
	return rec.Schedule, nil
}
