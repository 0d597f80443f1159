package suggest

import (
	"fmt"
	"strings"
	"text/template"

	"kudos/internal/model"
)

// Suggestion is a rendered comment ready for staging.
type Suggestion struct {
	TemplateID string
	Text       string
}

// TemplateRenderError reports a template whose placeholders could not be
// resolved against a record.
type TemplateRenderError struct {
	TemplateID string
	Err        error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.TemplateID, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }

// Matches reports whether a template's conditions hold for a record.
// Fallback templates match everything.
func Matches(t Template, r model.UserRecord) bool {
	if t.Fallback {
		return true
	}
	if t.RequireNotFollowing && r.Following {
		return false
	}
	for kind, min := range t.MinCounts {
		if r.Count(model.ActionKind(kind)) < min {
			return false
		}
	}
	return true
}

// SelectTemplate returns the first template whose conditions match, in
// declared order. A validated set always has a fallback, so a match exists.
func SelectTemplate(set TemplateSet, r model.UserRecord) (Template, error) {
	for _, t := range set.Templates {
		if !t.Fallback && Matches(t, r) {
			return t, nil
		}
	}
	for _, t := range set.Templates {
		if t.Fallback {
			return t, nil
		}
	}
	return Template{}, &ConfigError{Reason: "no fallback template"}
}

// Render fills the template's placeholders from the record. Unknown
// placeholders fail rather than render blanks into an outgoing comment.
func Render(t Template, r model.UserRecord) (string, error) {
	tpl, err := template.New(t.ID).Option("missingkey=error").Parse(t.Text)
	if err != nil {
		return "", &TemplateRenderError{TemplateID: t.ID, Err: err}
	}
	data := map[string]any{
		"Name":     r.DisplayName,
		"UserID":   r.UserID,
		"Likes":    r.Count(model.ActionLike),
		"Follows":  r.Count(model.ActionFollow),
		"Comments": r.Count(model.ActionComment),
		"Total":    r.TotalCount(),
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", &TemplateRenderError{TemplateID: t.ID, Err: err}
	}
	return sb.String(), nil
}

// Suggest selects and renders in one step.
func Suggest(set TemplateSet, r model.UserRecord) (Suggestion, error) {
	t, err := SelectTemplate(set, r)
	if err != nil {
		return Suggestion{}, err
	}
	text, err := Render(t, r)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{TemplateID: t.ID, Text: text}, nil
}
