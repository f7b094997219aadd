package viewfield

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference       = errors.New("invalid view reference")
	ErrMissingRequiredDefault = errors.New("always use default value requires a default value")
	ErrUnresolvedReference    = errors.New("unresolved view reference")
)

const (
	MissingViewName = "view name"
	MissingView     = "view"
	MissingDisplay  = "display"
)

// ReferenceError reports which half of a reference could not be found.
// Kind is ErrInvalidReference or ErrUnresolvedReference. Missing is empty when
// resolution was cut short by the context rather than by the catalog.
type ReferenceError struct {
	Kind        error
	ViewName    string
	DisplayName string
	Missing     string
	Err         error
}

func (e *ReferenceError) Error() string {
	var msg string
	switch e.Missing {
	case MissingViewName:
		msg = fmt.Sprintf("%v: view name is required", e.Kind)
	case MissingDisplay:
		msg = fmt.Sprintf("%v: display %q not found in view %q", e.Kind, e.DisplayName, e.ViewName)
	case "":
		msg = fmt.Sprintf("%v: %s|%s", e.Kind, e.ViewName, e.DisplayName)
	default:
		msg = fmt.Sprintf("%v: view %q not found", e.Kind, e.ViewName)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReferenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Identifier is the identifier that failed to resolve.
func (e *ReferenceError) Identifier() string {
	if e.Missing == MissingDisplay {
		return e.DisplayName
	}
	return e.ViewName
}
