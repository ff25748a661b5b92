package strategy

import (
	"encoding/json"
	"math/rand"
	"os"
)

// Template is one educational content record from the template store.
// Older store files used description or core_idea instead of summary.
type Template struct {
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	CoreIdea    string `json:"core_idea,omitempty"`
}

// SummaryText resolves the template body across the legacy field names.
func (t Template) SummaryText() string {
	switch {
	case t.Summary != "":
		return t.Summary
	case t.Description != "":
		return t.Description
	case t.CoreIdea != "":
		return t.CoreIdea
	}
	return "Educational content"
}

// TemplateStore reads educational templates from a JSON file once per selection.
type TemplateStore struct {
	path string
}

// NewTemplateStore creates a store over the given file path.
func NewTemplateStore(path string) *TemplateStore {
	return &TemplateStore{path: path}
}

// Pick loads the store and returns one template chosen uniformly at random.
// ok is false when the file is unreadable or holds no templates.
func (s *TemplateStore) Pick(rng *rand.Rand) (Template, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return Template{}, false
	}

	var parsed struct {
		Templates []Template `json:"templates"`
	}
	if err := json.Unmarshal(b, &parsed); err != nil {
		return Template{}, false
	}
	if len(parsed.Templates) == 0 {
		return Template{}, false
	}

	return parsed.Templates[rng.Intn(len(parsed.Templates))], true
}
