package school

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackAnswer is returned by Store.Answer when no keyword matches.
const FallbackAnswer = "Sorry, I don't know the answer to that yet. Try rephrasing your question or ask your teacher."

// Knowledge is the category -> keyword -> answer mapping used to answer questions.
// Categories and keywords keep their insertion order, in memory and in JSON.
type Knowledge []KnowledgeCategory

type KnowledgeCategory struct {
	Name    string           `json:"name"`
	Entries []KnowledgeEntry `json:"entries"`
}

type KnowledgeEntry struct {
	Keyword string `json:"keyword"`
	Answer  string `json:"answer"`
}

// Set stores answer for keyword in category; an existing keyword of the same category keeps its position.
func (kb *Knowledge) Set(category, keyword, answer string) {
	for i := range *kb {
		cat := &(*kb)[i]
		if cat.Name != category {
			continue
		}
		for j := range cat.Entries {
			if cat.Entries[j].Keyword == keyword {
				cat.Entries[j].Answer = answer
				return
			}
		}
		cat.Entries = append(cat.Entries, KnowledgeEntry{Keyword: keyword, Answer: answer})
		return
	}
	*kb = append(*kb, KnowledgeCategory{
		Name:    category,
		Entries: []KnowledgeEntry{{Keyword: keyword, Answer: answer}},
	})
}

// Delete removes keyword from category (or the whole category when keyword is empty).
// It reports whether anything was removed.
func (kb *Knowledge) Delete(category, keyword string) bool {
	for i, cat := range *kb {
		if cat.Name != category {
			continue
		}
		if keyword == "" {
			*kb = append((*kb)[:i], (*kb)[i+1:]...)
			return true
		}
		for j, entry := range cat.Entries {
			if entry.Keyword == keyword {
				(*kb)[i].Entries = append(cat.Entries[:j], cat.Entries[j+1:]...)
				return true
			}
		}
		return false
	}
	return false
}

// Match returns the answer of the first keyword contained in the lowercased message.
func (kb Knowledge) Match(message string) (string, bool) {
	message = strings.ToLower(message)
	for _, cat := range kb {
		for _, entry := range cat.Entries {
			if entry.Keyword != "" && strings.Contains(message, entry.Keyword) {
				return entry.Answer, true
			}
		}
	}
	return "", false
}

// Len returns the number of keywords across all categories.
func (kb Knowledge) Len() int {
	var n int
	for _, cat := range kb {
		n += len(cat.Entries)
	}
	return n
}

// MarshalJSON encodes the knowledge base as nested objects, in insertion order.
func (kb Knowledge) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range kb {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, cat.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, entry := range cat.Entries {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONKey(&buf, entry.Keyword); err != nil {
				return nil, err
			}
			answer, err := json.Marshal(entry.Answer)
			if err != nil {
				return nil, err
			}
			buf.Write(answer)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes nested objects keeping the order they appear in.
func (kb *Knowledge) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // null
		*kb = Knowledge{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ai_knowledge: expected object, got %v", tok)
	}

	res := Knowledge{}
	for dec.More() {
		name, err := readJSONKey(dec)
		if err != nil {
			return err
		}
		if tok, err = dec.Token(); err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return fmt.Errorf("ai_knowledge.%s: expected object, got %v", name, tok)
		}
		if res.index(name) < 0 {
			res = append(res, KnowledgeCategory{Name: name, Entries: []KnowledgeEntry{}})
		}
		for dec.More() {
			keyword, err := readJSONKey(dec)
			if err != nil {
				return err
			}
			var answer string
			if err := dec.Decode(&answer); err != nil {
				return fmt.Errorf("ai_knowledge.%s.%s: %v", name, keyword, err)
			}
			res.Set(name, keyword, answer) // repeated keys: the last value wins
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return err
		}
	}
	*kb = res
	return nil
}

func (kb Knowledge) index(category string) int {
	for i := range kb {
		if kb[i].Name == category {
			return i
		}
	}
	return -1
}

func writeJSONKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

func readJSONKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("ai_knowledge: expected key, got %v", tok)
	}
	return key, nil
}

// splitKeywords splits a comma-separated keyword list, trimming and lowering each keyword.
func splitKeywords(keywords string) []string {
	parts := strings.Split(keywords, ",")
	res := make([]string, 0, len(parts))
	for _, kw := range parts {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			res = append(res, kw)
		}
	}
	return res
}

func defaultKnowledge() Knowledge {
	kb := Knowledge{}
	seeds := []struct{ category, keywords, answer string }{
		{"greetings", "hello, good morning, good afternoon", "Hello! I'm your school assistant. Ask me about homework, the schedule or your points."},
		{"schedule", "schedule, timetable, lesson", "Your class schedule is on the dashboard under \"Schedule\"."},
		{"homework", "homework, assignment, task", "Open \"My tasks\" to see the assignments of your class. Completing one gives you points."},
		{"points", "points, level, rating", "Every completed task gives you points; each five completed tasks raise your level by one."},
		{"help", "help, support", "Ask me a question in your own words, or contact your teacher through the school office."},
	}
	for _, seed := range seeds {
		for _, kw := range splitKeywords(seed.keywords) {
			kb.Set(seed.category, kw, seed.answer)
		}
	}
	return kb
}
