// Package viewfield implements a field whose value references a view display
// plus arguments, validated against a catalog and resolved through a renderer
// when the owning item is shown.
//
// Every function here is stateless. The value, the settings, the catalog and
// the renderer are all supplied by the caller.
package viewfield

import (
	"fmt"
	"strings"
)

const DefaultDisplay = "default"

// Value is the stored reference for one field delta.
type Value struct {
	ViewName    string   `json:"view_name"`
	DisplayName string   `json:"display_name"`
	Arguments   []string `json:"arguments,omitempty"`
}

// IsEmpty reports whether v selects no view.
func (v Value) IsEmpty() bool {
	return strings.TrimSpace(v.ViewName) == ""
}

// Normalize trims identifiers, fills in the default display and drops blank
// arguments. An empty value normalizes to the zero Value.
func (v Value) Normalize() Value {
	if v.IsEmpty() {
		return Value{}
	}
	out := Value{
		ViewName:    strings.TrimSpace(v.ViewName),
		DisplayName: strings.TrimSpace(v.DisplayName),
	}
	if out.DisplayName == "" {
		out.DisplayName = DefaultDisplay
	}
	for _, arg := range v.Arguments {
		if arg = strings.TrimSpace(arg); arg != "" {
			out.Arguments = append(out.Arguments, arg)
		}
	}
	return out
}

// Selection renders the select-widget key, "view|display".
func (v Value) Selection() string {
	if v.IsEmpty() {
		return ""
	}
	n := v.Normalize()
	return n.ViewName + "|" + n.DisplayName
}

func (v Value) String() string {
	if v.IsEmpty() {
		return "(none)"
	}
	s := v.Selection()
	if len(v.Normalize().Arguments) > 0 {
		s += ":" + FormatArguments(v.Arguments)
	}
	return s
}

// Equal compares the normalized forms of v and o.
func (v Value) Equal(o Value) bool {
	a, b := v.Normalize(), o.Normalize()
	if a.ViewName != b.ViewName || a.DisplayName != b.DisplayName || len(a.Arguments) != len(b.Arguments) {
		return false
	}
	for i := range a.Arguments {
		if a.Arguments[i] != b.Arguments[i] {
			return false
		}
	}
	return true
}

// ParseSelection reads "view|display". "" and "0" select nothing and a bare
// view name selects its default display.
func ParseSelection(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return Value{}, nil
	}
	view, display, hasDisplay := strings.Cut(s, "|")
	view = strings.TrimSpace(view)
	display = strings.TrimSpace(display)
	if view == "" {
		return Value{}, fmt.Errorf("parse selection %q: view name is empty", s)
	}
	if hasDisplay && display == "" {
		return Value{}, fmt.Errorf("parse selection %q: display name is empty", s)
	}
	if strings.Contains(display, "|") {
		return Value{}, fmt.Errorf("parse selection %q: too many separators", s)
	}
	return Value{ViewName: view, DisplayName: display}.Normalize(), nil
}

// ParseArguments splits contextual arguments on "/" or ",".
func ParseArguments(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ',' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FormatArguments joins the non-blank arguments with "/".
func FormatArguments(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, "/")
}
