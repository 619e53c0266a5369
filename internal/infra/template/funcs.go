package template

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// displayLayout is how booking times appear in notifications.
const displayLayout = "Monday, January 2, 2006 at 3:04 PM MST"

var funcs = template.FuncMap{
	"formatDate": formatDate,
	"upper":      func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"default":    defaultValue,
	"required":   required,
}

// formatDate renders an RFC 3339 string or time.Time for humans.
// Strings that do not parse are passed through unchanged.
func formatDate(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return t.Format(displayLayout), nil
	case string:
		if t == "" {
			return "", nil
		}
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return t, nil
		}
		return parsed.Format(displayLayout), nil
	default:
		return "", fmt.Errorf("formatDate: unsupported value of type %T", v)
	}
}

// defaultValue follows the pipeline convention: {{ .name | default "there" }}.
func defaultValue(def, v any) any {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok && s == "" {
		return def
	}
	return v
}

// required fails the render when a field the template cannot do without is missing.
// The built-in templates render with any data, so it is meant for template sets
// loaded from templates.dir.
func required(field string, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%s is required", field)
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	return v, nil
}
