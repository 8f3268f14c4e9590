package school

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/classpoint/assistant/core"
)

// KnowledgeSeed is one item of a knowledge-base import file.
type KnowledgeSeed struct {
	Category string `yaml:"category" json:"category" validate:"required,notblank"`
	Keywords string `yaml:"keywords" json:"keywords" validate:"required,notblank"` // comma-separated
	Answer   string `yaml:"answer" json:"answer" validate:"required,notblank"`
}

// AddKnowledge stores answer under every keyword of the comma-separated keywords list.
// It returns the keywords stored.
func (s *Store) AddKnowledge(ctx context.Context, category, keywords, answer string) ([]string, error) {
	seed := KnowledgeSeed{
		Category: core.CleanString(category),
		Keywords: keywords,
		Answer:   core.CleanString(answer),
	}
	if err := s.validateStruct(seed); err != nil {
		return nil, err
	}
	kws := splitKeywords(seed.Keywords)
	if len(kws) == 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "keywords", Error: "at least one keyword is required"})
	}

	err := s.update(ctx, func(doc *Document) error {
		for _, kw := range kws {
			doc.AIKnowledge.Set(seed.Category, kw, seed.Answer)
		}
		s.appendLog(doc, "admin", fmt.Sprintf("knowledge added to %q (%d keywords)", seed.Category, len(kws)), LogTypeKnowledge, LogLevelSuccess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kws, nil
}

// ImportKnowledge reads a YAML list of KnowledgeSeed and stores all of them in one write.
// It returns the number of keywords stored.
func (s *Store) ImportKnowledge(ctx context.Context, r io.Reader) (int, error) {
	var seeds []KnowledgeSeed
	if err := yaml.NewDecoder(r).Decode(&seeds); err != nil && err != io.EOF {
		return 0, core.NewValidationError(errors.Wrap(err, "decoding knowledge file"))
	}
	for i := range seeds {
		seeds[i].Category = core.CleanString(seeds[i].Category)
		seeds[i].Answer = core.CleanString(seeds[i].Answer)
		if err := s.validateStruct(seeds[i]); err != nil {
			return 0, errors.Wrapf(err, "item %d", i+1)
		}
	}

	var n int
	err := s.update(ctx, func(doc *Document) error {
		for _, seed := range seeds {
			for _, kw := range splitKeywords(seed.Keywords) {
				doc.AIKnowledge.Set(seed.Category, kw, seed.Answer)
				n++
			}
		}
		if n == 0 {
			return errNoChange
		}
		s.appendLog(doc, "admin", fmt.Sprintf("knowledge imported (%d keywords)", n), LogTypeKnowledge, LogLevelSuccess)
		return nil
	})
	return n, err
}

// DeleteKnowledge removes keyword from category, or the whole category when keyword is empty.
func (s *Store) DeleteKnowledge(ctx context.Context, category, keyword string) error {
	category = core.CleanString(category)
	keyword = core.CleanString(keyword, true /* lower */)
	return s.update(ctx, func(doc *Document) error {
		if !doc.AIKnowledge.Delete(category, keyword) {
			return ErrEntryNotFound
		}
		s.appendLog(doc, "admin", fmt.Sprintf("knowledge removed from %q", category), LogTypeKnowledge, LogLevelWarning)
		return nil
	})
}

// Knowledge returns a copy of the knowledge base.
func (s *Store) Knowledge(ctx context.Context) (Knowledge, error) {
	var kb Knowledge
	err := s.view(ctx, func(doc *Document) error {
		kb = make(Knowledge, 0, len(doc.AIKnowledge))
		for _, cat := range doc.AIKnowledge {
			kb = append(kb, KnowledgeCategory{
				Name:    cat.Name,
				Entries: append([]KnowledgeEntry{}, cat.Entries...),
			})
		}
		return nil
	})
	return kb, err
}

// Answer returns the answer of the first keyword found in message, or FallbackAnswer.
func (s *Store) Answer(ctx context.Context, message string) (string, error) {
	answer := FallbackAnswer
	err := s.view(ctx, func(doc *Document) error {
		if a, ok := doc.AIKnowledge.Match(message); ok {
			answer = a
		}
		return nil
	})
	return answer, err
}
