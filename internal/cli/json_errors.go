package cli

import (
	"errors"

	"github.com/robertguss/viewfield/internal/account"
	"github.com/robertguss/viewfield/internal/catalog"
	"github.com/robertguss/viewfield/internal/content"
	"github.com/robertguss/viewfield/internal/field"
	"github.com/robertguss/viewfield/internal/viewfield"
)

var errInvalidFlag = errors.New("invalid flag")

func exitJSONCommandError(err error) error {
	code, details := classifyJSONCommandError(err)
	_ = writeJSONError(code, err.Error(), details)
	return ExitError{Code: 2}
}

// commandError reports err as a JSON envelope when jsonOut is set and
// returns it unchanged otherwise.
func commandError(jsonOut bool, err error) error {
	if jsonOut {
		return exitJSONCommandError(err)
	}
	return err
}

func classifyJSONCommandError(err error) (string, any) {
	var notInitialized dbNotInitializedError
	if errors.As(err, &notInitialized) {
		return "not_initialized", map[string]any{"path": notInitialized.Path}
	}
	if errors.Is(err, viewfield.ErrMissingRequiredDefault) {
		return "missing_default", nil
	}

	var refErr *viewfield.ReferenceError
	if errors.As(err, &refErr) {
		code := "invalid_reference"
		if errors.Is(refErr.Kind, viewfield.ErrUnresolvedReference) {
			code = "unresolved_reference"
		}
		return code, map[string]any{
			"view":       refErr.ViewName,
			"display":    refErr.DisplayName,
			"missing":    refErr.Missing,
			"identifier": refErr.Identifier(),
		}
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, field.ErrNotFound),
		errors.Is(err, field.ErrBundleNotFound),
		errors.Is(err, content.ErrNotFound),
		errors.Is(err, content.ErrTypeNotFound):
		return "not_found", nil
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, content.ErrInvalidInput),
		errors.Is(err, field.ErrInvalidName),
		errors.Is(err, account.ErrInvalidName),
		errors.Is(err, viewfield.ErrInvalidReference),
		errors.Is(err, errInvalidFlag):
		return "invalid_input", nil
	}
	return "internal_error", nil
}
