package resume

import "strings"

// Template names one of the fixed preview layouts.
type Template string

const (
	TemplateModern       Template = "modern"
	TemplateClassic      Template = "classic"
	TemplateClean        Template = "clean"
	TemplateSimple       Template = "simple"
	TemplateProfessional Template = "professional"

	DefaultTemplate = TemplateModern
)

// Templates lists every layout in display order.
var Templates = []Template{
	TemplateModern,
	TemplateClassic,
	TemplateClean,
	TemplateSimple,
	TemplateProfessional,
}

// ParseTemplate checks name against the allow-list. Matching is exact.
func ParseTemplate(name string) (Template, bool) {
	for _, t := range Templates {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// TemplateOrDefault maps a stored value to a known template, falling back to the default.
func TemplateOrDefault(name string) Template {
	if t, ok := ParseTemplate(strings.TrimSpace(name)); ok {
		return t
	}
	return DefaultTemplate
}

// Page is the layout file rendered for the template, e.g. "modern.html".
func (t Template) Page() string {
	return string(t) + ".html"
}

// Path is the preview route of the template.
func (t Template) Path() string {
	return "/" + t.Page()
}

// Title is the human readable name shown on the template picker.
func (t Template) Title() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
