package school

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core"
)

func TestStore_AddKnowledge(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	kws, err := s.AddKnowledge(ctx, "exams", " Exam, TEST , ,quiz", "Exams start on June 1st.")
	require.NoError(t, err)
	assert.Equal(t, []string{"exam", "test", "quiz"}, kws)

	answer, err := s.Answer(ctx, "When is the EXAM?")
	require.NoError(t, err)
	assert.Equal(t, "Exams start on June 1st.", answer)

	// later writes overwrite within the category
	_, err = s.AddKnowledge(ctx, "exams", "quiz", "Quizzes are on Fridays.")
	require.NoError(t, err)
	answer, err = s.Answer(ctx, "next quiz?")
	require.NoError(t, err)
	assert.Equal(t, "Quizzes are on Fridays.", answer)

	_, err = s.AddKnowledge(ctx, "exams", " , ", "x")
	_, ok := core.AsValidationError(err)
	assert.True(t, ok)
}

func TestStore_Answer(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	// first category wins over a later one
	_, err := s.AddKnowledge(ctx, "zz-first", "canteen", "first")
	require.NoError(t, err)
	_, err = s.AddKnowledge(ctx, "aa-second", "canteen", "second")
	require.NoError(t, err)

	tests := []struct {
		message string
		want    string
	}{
		{message: "Where is the CANTEEN", want: "first"},
		{message: "Hello there", want: defaultKnowledge()[0].Entries[0].Answer},
		{message: "what is the meaning of life", want: FallbackAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, err := s.Answer(ctx, tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_ImportKnowledge(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	file := `
- category: library
  keywords: library, books
  answer: The library is open from 9 to 17.
- category: sport
  keywords: gym
  answer: The gym is in building B.
`
	n, err := s.ImportKnowledge(ctx, strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	answer, err := s.Answer(ctx, "can I borrow books?")
	require.NoError(t, err)
	assert.Equal(t, "The library is open from 9 to 17.", answer)

	_, err = s.ImportKnowledge(ctx, strings.NewReader("- category: x\n  answer: y\n"))
	_, ok := core.AsValidationError(err)
	assert.True(t, ok)
}

func TestStore_DeleteKnowledge(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	_, err := s.AddKnowledge(ctx, "exams", "exam, test", "June.")
	require.NoError(t, err)

	require.NoError(t, s.DeleteKnowledge(ctx, "exams", "EXAM"))
	assert.Equal(t, ErrEntryNotFound, s.DeleteKnowledge(ctx, "exams", "exam"))

	answer, err := s.Answer(ctx, "exam")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, answer)

	require.NoError(t, s.DeleteKnowledge(ctx, "exams", ""))
	kb, err := s.Knowledge(ctx)
	require.NoError(t, err)
	for _, cat := range kb {
		assert.NotEqual(t, "exams", cat.Name)
	}
}

func TestKnowledge_JSON(t *testing.T) {
	kb := Knowledge{}
	kb.Set("zeta", "b", "1")
	kb.Set("zeta", "a", "2")
	kb.Set("alpha", "c", "3")

	data, err := json.Marshal(kb)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":{"b":"1","a":"2"},"alpha":{"c":"3"}}`, string(data))

	var got Knowledge
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, kb, got)
	assert.Equal(t, 3, got.Len())

	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	assert.Empty(t, got)

	require.NoError(t, json.Unmarshal([]byte(`{"a":{"x":"1","x":"2"},"a":{"y":"3"},"b":{}}`), &got))
	assert.Equal(t, Knowledge{
		{Name: "a", Entries: []KnowledgeEntry{{Keyword: "x", Answer: "2"}, {Keyword: "y", Answer: "3"}}},
		{Name: "b", Entries: []KnowledgeEntry{}},
	}, got, "repeated keys merge, the last value wins")

	assert.Error(t, json.Unmarshal([]byte(`{"zeta":["a"]}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"zeta":{"a":1}}`), &got))
}

func TestStore_Restore_repeatedKnowledgeKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	backup := `{"version":"1.0","users":[],"classes":{},"ai_knowledge":{"exams":{"exam":"old","exam":"new"}}}`
	require.NoError(t, s.Restore(ctx, []byte(backup)))

	answer, err := s.Answer(ctx, "when is the exam")
	require.NoError(t, err)
	assert.Equal(t, "new", answer)

	kb, err := s.Knowledge(ctx)
	require.NoError(t, err)
	require.Len(t, kb, 1)
	assert.Len(t, kb[0].Entries, 1)

	require.NoError(t, s.DeleteKnowledge(ctx, "exams", "exam"))
	answer, err = s.Answer(ctx, "when is the exam")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, answer)
}
