// Package suggest picks a thank-you comment template for a user record and
// renders it. Templates live in a YAML file the operator edits; selection is
// first-match over the declared order so the same record always yields the
// same text.
package suggest

import (
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"kudos/internal/model"
)

// Template is one comment template with its match conditions.
type Template struct {
	ID string `yaml:"id"`
	// Minimum engagement counts per action kind (like, follow, comment, other)
	MinCounts map[string]int `yaml:"minCounts"`
	// Match only users we do not already follow back
	RequireNotFollowing bool `yaml:"requireNotFollowing"`
	// Fallback templates match any record; at least one is required
	Fallback bool   `yaml:"fallback"`
	Text     string `yaml:"text"`
}

// TemplateSet is the parsed template file, in declared order.
type TemplateSet struct {
	Templates []Template `yaml:"templates"`
}

// ConfigError reports an invalid template file.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "template config: " + e.Reason }

// LoadTemplates reads and validates the YAML template file.
func LoadTemplates(path string) (TemplateSet, error) {
	var set TemplateSet
	b, err := os.ReadFile(path)
	if err != nil {
		return set, err
	}
	if err := yaml.Unmarshal(b, &set); err != nil {
		return set, &ConfigError{Reason: err.Error()}
	}
	if err := set.Validate(); err != nil {
		return set, err
	}
	return set, nil
}

// Validate checks the set: non-empty unique ids, known action kinds in
// minCounts, parseable template text, and at least one fallback.
func (s TemplateSet) Validate() error {
	if len(s.Templates) == 0 {
		return &ConfigError{Reason: "no templates defined"}
	}
	kinds := make(map[string]bool)
	for _, k := range model.Kinds() {
		kinds[string(k)] = true
	}
	ids := make(map[string]bool)
	haveFallback := false
	for _, t := range s.Templates {
		if t.ID == "" {
			return &ConfigError{Reason: "template with empty id"}
		}
		if ids[t.ID] {
			return &ConfigError{Reason: fmt.Sprintf("duplicate template id %q", t.ID)}
		}
		ids[t.ID] = true
		for k := range t.MinCounts {
			if !kinds[k] {
				return &ConfigError{Reason: fmt.Sprintf("template %q: unknown action kind %q", t.ID, k)}
			}
		}
		if t.Text == "" {
			return &ConfigError{Reason: fmt.Sprintf("template %q: empty text", t.ID)}
		}
		if _, err := template.New(t.ID).Option("missingkey=error").Parse(t.Text); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("template %q: %v", t.ID, err)}
		}
		if t.Fallback {
			haveFallback = true
		}
	}
	if !haveFallback {
		return &ConfigError{Reason: "no fallback template"}
	}
	return nil
}

// DefaultTemplates returns the starter set written by `kudos init`.
func DefaultTemplates() TemplateSet {
	return TemplateSet{Templates: []Template{
		{
			ID:        "many-likes",
			MinCounts: map[string]int{string(model.ActionLike): 2},
			Text:      "{{.Name}}さん、いつもたくさんのいいねありがとうございます！",
		},
		{
			ID:                  "new-fan",
			MinCounts:           map[string]int{string(model.ActionLike): 1},
			RequireNotFollowing: true,
			Text:                "{{.Name}}さん、いいねありがとうございます！素敵なROOMですね。",
		},
		{
			ID:       "thanks",
			Fallback: true,
			Text:     "{{.Name}}さん、ありがとうございます！",
		},
	}}
}

// SaveTemplates writes the set as YAML.
func SaveTemplates(path string, set TemplateSet) error {
	b, err := yaml.Marshal(set)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
