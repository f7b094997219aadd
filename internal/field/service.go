package field

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/viewfield"
)

var (
	ErrNotFound       = errors.New("field not found")
	ErrInvalidName    = errors.New("invalid field name")
	ErrBundleNotFound = errors.New("content type not found")
	fieldNamePattern  = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)
	jsonMarshal       = json.Marshal
)

type Config struct {
	Bundle    string             `json:"bundle"`
	FieldName string             `json:"field_name"`
	Label     string             `json:"label"`
	Settings  viewfield.Settings `json:"settings"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type Input struct {
	Bundle    string
	FieldName string
	Label     string
	Settings  viewfield.Settings
}

type Service struct {
	db      *sql.DB
	catalog viewfield.Catalog
}

func NewService(conn *sql.DB, catalog viewfield.Catalog) *Service {
	return &Service{db: conn, catalog: catalog}
}

// Configure creates or replaces a field instance on a bundle. Settings are
// validated against the catalog before anything is written.
func (s *Service) Configure(ctx context.Context, in Input) (Config, error) {
	in.Bundle = strings.TrimSpace(in.Bundle)
	in.FieldName = strings.TrimSpace(in.FieldName)
	if !fieldNamePattern.MatchString(in.FieldName) {
		return Config{}, fmt.Errorf("%w: %q must match %s", ErrInvalidName, in.FieldName, fieldNamePattern)
	}
	if strings.TrimSpace(in.Label) == "" {
		in.Label = in.FieldName
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_types WHERE type = ?;`, in.Bundle).Scan(&exists); err != nil {
		return Config{}, fmt.Errorf("query content type: %w", err)
	}
	if exists == 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrBundleNotFound, in.Bundle)
	}

	if err := viewfield.ValidateSettings(ctx, s.catalog, in.Settings); err != nil {
		return Config{}, err
	}

	var def viewfield.Value
	if in.Settings.HasDefault() {
		def = in.Settings.DefaultValue.Normalize()
	}
	args := def.Arguments
	if args == nil {
		args = []string{}
	}
	argsJSON, err := jsonMarshal(args)
	if err != nil {
		return Config{}, fmt.Errorf("marshal default arguments: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO field_configs (
    bundle, field_name, label, force_default, allow_empty,
    default_view, default_display, default_args, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(bundle, field_name) DO UPDATE SET
    label = excluded.label,
    force_default = excluded.force_default,
    allow_empty = excluded.allow_empty,
    default_view = excluded.default_view,
    default_display = excluded.default_display,
    default_args = excluded.default_args,
    updated_at = excluded.updated_at;
`, in.Bundle, in.FieldName, in.Label, db.BoolToInt(in.Settings.ForceDefault), db.BoolToInt(in.Settings.AllowEmpty),
		def.ViewName, def.DisplayName, string(argsJSON), now, now); err != nil {
		return Config{}, fmt.Errorf("upsert field config: %w", err)
	}
	return s.Get(ctx, in.Bundle, in.FieldName)
}

const selectConfig = `
SELECT bundle, field_name, label, force_default, allow_empty,
       default_view, default_display, default_args, created_at, updated_at
FROM field_configs
`

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(row scanner) (Config, error) {
	var (
		c                         Config
		forceDefault, allowEmpty  int
		defView, defDisplay, args string
	)
	if err := row.Scan(&c.Bundle, &c.FieldName, &c.Label, &forceDefault, &allowEmpty,
		&defView, &defDisplay, &args, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Config{}, err
	}
	c.Settings.ForceDefault = forceDefault == 1
	c.Settings.AllowEmpty = allowEmpty == 1
	if defView != "" {
		v := viewfield.Value{ViewName: defView, DisplayName: defDisplay}
		if err := json.Unmarshal([]byte(args), &v.Arguments); err != nil {
			return Config{}, fmt.Errorf("decode default arguments: %w", err)
		}
		v = v.Normalize()
		c.Settings.DefaultValue = &v
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, bundle, fieldName string) (Config, error) {
	c, err := scanConfig(s.db.QueryRowContext(ctx, selectConfig+`WHERE bundle = ? AND field_name = ?;`, bundle, fieldName))
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, fmt.Errorf("%w: %s.%s", ErrNotFound, bundle, fieldName)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load field config: %w", err)
	}
	return c, nil
}

// List returns the field configs of bundle, or of every bundle when bundle is empty.
func (s *Service) List(ctx context.Context, bundle string) ([]Config, error) {
	query := selectConfig + `ORDER BY bundle, field_name;`
	var args []any
	if bundle != "" {
		query = selectConfig + `WHERE bundle = ? ORDER BY field_name;`
		args = append(args, bundle)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query field configs: %w", err)
	}
	defer rows.Close()

	out := []Config{}
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field config: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate field configs: %w", err)
	}
	return out, nil
}

// Remove deletes the field instance and every value stored for it.
func (s *Service) Remove(ctx context.Context, bundle, fieldName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin field tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM field_configs WHERE bundle = ? AND field_name = ?;`, bundle, fieldName)
	if err != nil {
		return fmt.Errorf("delete field config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s.%s", ErrNotFound, bundle, fieldName)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM content_field_values
WHERE field_name = ? AND content_id IN (SELECT id FROM content WHERE type = ?);
`, fieldName, bundle); err != nil {
		return fmt.Errorf("delete field values: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit field tx: %w", err)
	}
	return nil
}
