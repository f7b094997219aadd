package viewfield

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Settings configures one field instance.
type Settings struct {
	ForceDefault bool   `json:"force_default"`
	AllowEmpty   bool   `json:"allow_empty"`
	DefaultValue *Value `json:"default_value,omitempty"`
}

func (s Settings) HasDefault() bool {
	return s.DefaultValue != nil && !s.DefaultValue.IsEmpty()
}

// Validate checks that v names an enabled view and display in catalog. An
// empty value passes only when allowEmpty is set.
func Validate(ctx context.Context, catalog Catalog, v Value, allowEmpty bool) error {
	if v.IsEmpty() {
		if allowEmpty {
			return nil
		}
		return &ReferenceError{Kind: ErrInvalidReference, Missing: MissingViewName}
	}
	v = v.Normalize()

	displays, found, err := catalog.ListDisplays(ctx, v.ViewName)
	if err != nil {
		return fmt.Errorf("lookup view %q: %w", v.ViewName, err)
	}
	if !found {
		return &ReferenceError{Kind: ErrInvalidReference, ViewName: v.ViewName, DisplayName: v.DisplayName, Missing: MissingView}
	}
	if !slices.Contains(displays, v.DisplayName) {
		return &ReferenceError{Kind: ErrInvalidReference, ViewName: v.ViewName, DisplayName: v.DisplayName, Missing: MissingDisplay}
	}
	return nil
}

// ValidateSettings enforces that ForceDefault comes with a valid default.
func ValidateSettings(ctx context.Context, catalog Catalog, s Settings) error {
	if !s.HasDefault() {
		if s.ForceDefault {
			return ErrMissingRequiredDefault
		}
		return nil
	}

	err := Validate(ctx, catalog, *s.DefaultValue, false)
	if err == nil {
		return nil
	}
	if s.ForceDefault && errors.Is(err, ErrInvalidReference) {
		return fmt.Errorf("%w: %w", ErrMissingRequiredDefault, err)
	}
	return err
}

// ResolveForDisplay renders v through renderer once catalog confirms the
// reference. An empty value renders nothing. A vanished view or display, and
// a cancelled or expired ctx, come back as ErrUnresolvedReference. Any other
// renderer error is returned as is.
func ResolveForDisplay(ctx context.Context, catalog Catalog, renderer Renderer, v Value) (Fragment, error) {
	if v.IsEmpty() {
		return "", nil
	}
	v = v.Normalize()

	if err := ctx.Err(); err != nil {
		return "", unresolved(v, "", err)
	}

	displays, found, err := catalog.ListDisplays(ctx, v.ViewName)
	if err != nil {
		if isContextErr(err) {
			return "", unresolved(v, "", err)
		}
		return "", fmt.Errorf("lookup view %q: %w", v.ViewName, err)
	}
	if !found {
		return "", unresolved(v, MissingView, nil)
	}
	if !slices.Contains(displays, v.DisplayName) {
		return "", unresolved(v, MissingDisplay, nil)
	}

	frag, err := renderer.Render(ctx, v.ViewName, v.DisplayName, slices.Clone(v.Arguments))
	if err != nil {
		if isContextErr(err) || ctx.Err() != nil {
			cause := err
			if ctx.Err() != nil {
				cause = ctx.Err()
			}
			return "", unresolved(v, "", cause)
		}
		return "", err
	}
	return frag, nil
}

// ApplyDefault returns a copy of the configured default, if any.
func ApplyDefault(s Settings) (Value, bool) {
	if !s.HasDefault() {
		return Value{}, false
	}
	v := *s.DefaultValue
	v.Arguments = slices.Clone(v.Arguments)
	return v.Normalize(), true
}

func unresolved(v Value, missing string, cause error) *ReferenceError {
	return &ReferenceError{Kind: ErrUnresolvedReference, ViewName: v.ViewName, DisplayName: v.DisplayName, Missing: missing, Err: cause}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
