package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/field"
	"github.com/robertguss/viewfield/internal/viewfield"
)

var (
	ErrNotFound     = errors.New("content not found")
	ErrInvalidInput = errors.New("invalid input")
	jsonMarshal     = json.Marshal
)

const DefaultRenderTimeout = 2 * time.Second

type Item struct {
	ID        int64                      `json:"id"`
	Type      string                     `json:"type"`
	Title     string                     `json:"title"`
	AuthorID  int64                      `json:"author_id,omitempty"`
	Published bool                       `json:"published"`
	Fields    map[string]viewfield.Value `json:"fields,omitempty"`
	CreatedAt string                     `json:"created_at"`
	UpdatedAt string                     `json:"updated_at"`
}

type CreateInput struct {
	Bundle    string
	Title     string
	AuthorID  int64
	Published bool
	Fields    map[string]viewfield.Value
}

type UpdateInput struct {
	Title     string
	Published bool
	Fields    map[string]viewfield.Value
}

type Service struct {
	db            *sql.DB
	catalog       viewfield.Catalog
	renderer      viewfield.Renderer
	fields        *field.Service
	logger        *zap.Logger
	renderTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderTimeout bounds each field's render. Zero or less disables the bound.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Service) { s.renderTimeout = d }
}

func NewService(conn *sql.DB, catalog viewfield.Catalog, renderer viewfield.Renderer, opts ...Option) *Service {
	s := &Service{
		db:            conn,
		catalog:       catalog,
		renderer:      renderer,
		fields:        field.NewService(conn, catalog),
		logger:        zap.NewNop(),
		renderTimeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormDefaults returns the values a new-item form for bundle starts with.
func (s *Service) FormDefaults(ctx context.Context, bundle string) (map[string]viewfield.Value, error) {
	if err := s.requireType(ctx, bundle); err != nil {
		return nil, err
	}
	configs, err := s.fields.List(ctx, bundle)
	if err != nil {
		return nil, err
	}
	out := map[string]viewfield.Value{}
	for _, cfg := range configs {
		if v, ok := viewfield.ApplyDefault(cfg.Settings); ok {
			out[cfg.FieldName] = v
		}
	}
	return out, nil
}

func (s *Service) requireType(ctx context.Context, bundle string) error {
	ok, err := s.TypeExists(ctx, bundle)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTypeNotFound, bundle)
	}
	return nil
}

// resolveFields applies defaults and validation to a submitted form. Forced
// defaults override whatever the editor sent. Unforced defaults fill missing
// fields only when fillDefaults is set; on update a missing field is empty.
func (s *Service) resolveFields(ctx context.Context, bundle string, submitted map[string]viewfield.Value, fillDefaults bool) (map[string]viewfield.Value, error) {
	configs, err := s.fields.List(ctx, bundle)
	if err != nil {
		return nil, err
	}
	known := make(map[string]field.Config, len(configs))
	for _, cfg := range configs {
		known[cfg.FieldName] = cfg
	}
	for name := range submitted {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrInvalidInput, bundle, name)
		}
	}

	out := map[string]viewfield.Value{}
	for _, cfg := range configs {
		v, ok := submitted[cfg.FieldName]
		if cfg.Settings.ForceDefault || (!ok && fillDefaults) {
			v, _ = viewfield.ApplyDefault(cfg.Settings)
		}
		if err := viewfield.Validate(ctx, s.catalog, v, cfg.Settings.AllowEmpty); err != nil {
			return nil, fmt.Errorf("field %s: %w", cfg.FieldName, err)
		}
		if !v.IsEmpty() {
			out[cfg.FieldName] = v.Normalize()
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	in.Bundle = strings.TrimSpace(in.Bundle)
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Item{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := s.requireType(ctx, in.Bundle); err != nil {
		return Item{}, err
	}
	values, err := s.resolveFields(ctx, in.Bundle, in.Fields, true)
	if err != nil {
		return Item{}, err
	}

	var author any
	if in.AuthorID > 0 {
		author = in.AuthorID
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("begin content tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO content (type, title, author_id, published, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?);
`, in.Bundle, in.Title, author, db.BoolToInt(in.Published), now, now)
	if err != nil {
		return Item{}, fmt.Errorf("insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Item{}, fmt.Errorf("content id: %w", err)
	}
	if err := insertValues(ctx, tx, id, values); err != nil {
		return Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("commit content tx: %w", err)
	}

	return Item{
		ID:        id,
		Type:      in.Bundle,
		Title:     in.Title,
		AuthorID:  in.AuthorID,
		Published: in.Published,
		Fields:    values,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update re-submits the whole form: every stored value is replaced.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Item, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Item{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	values, err := s.resolveFields(ctx, current.Type, in.Fields, false)
	if err != nil {
		return Item{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("begin content tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
UPDATE content SET title = ?, published = ?, updated_at = ? WHERE id = ?;
`, in.Title, db.BoolToInt(in.Published), now, id); err != nil {
		return Item{}, fmt.Errorf("update content: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM content_field_values WHERE content_id = ?;`, id); err != nil {
		return Item{}, fmt.Errorf("clear field values: %w", err)
	}
	if err := insertValues(ctx, tx, id, values); err != nil {
		return Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("commit content tx: %w", err)
	}

	current.Title = in.Title
	current.Published = in.Published
	current.Fields = values
	current.UpdatedAt = now
	return current, nil
}

func insertValues(ctx context.Context, tx *sql.Tx, id int64, values map[string]viewfield.Value) error {
	for _, name := range sortedNames(values) {
		v := values[name]
		args := v.Arguments
		if args == nil {
			args = []string{}
		}
		argsJSON, err := jsonMarshal(args)
		if err != nil {
			return fmt.Errorf("marshal arguments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO content_field_values (content_id, field_name, delta, view_name, display_name, arguments)
VALUES (?, ?, 0, ?, ?, ?);
`, id, name, v.ViewName, v.DisplayName, string(argsJSON)); err != nil {
			return fmt.Errorf("insert field value %s: %w", name, err)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	var (
		item      Item
		author    sql.NullInt64
		published int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, type, title, author_id, published, created_at, updated_at FROM content WHERE id = ?;
`, id).Scan(&item.ID, &item.Type, &item.Title, &author, &published, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Item{}, fmt.Errorf("query content: %w", err)
	}
	item.AuthorID = author.Int64
	item.Published = published == 1

	rows, err := s.db.QueryContext(ctx, `
SELECT field_name, view_name, display_name, arguments
FROM content_field_values
WHERE content_id = ?
ORDER BY field_name, delta;
`, id)
	if err != nil {
		return Item{}, fmt.Errorf("query field values: %w", err)
	}
	defer rows.Close()

	item.Fields = map[string]viewfield.Value{}
	for rows.Next() {
		var (
			name, args string
			v          viewfield.Value
		)
		if err := rows.Scan(&name, &v.ViewName, &v.DisplayName, &args); err != nil {
			return Item{}, fmt.Errorf("scan field value: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &v.Arguments); err != nil {
			return Item{}, fmt.Errorf("decode arguments of %s: %w", name, err)
		}
		item.Fields[name] = v.Normalize()
	}
	if err := rows.Err(); err != nil {
		return Item{}, fmt.Errorf("iterate field values: %w", err)
	}
	return item, nil
}

// List returns items without their field values, newest first.
func (s *Service) List(ctx context.Context, bundle string) ([]Item, error) {
	query := `SELECT id, type, title, author_id, published, created_at, updated_at FROM content`
	var args []any
	if bundle != "" {
		query += ` WHERE type = ?`
		args = append(args, bundle)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id DESC;`, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var (
			item      Item
			author    sql.NullInt64
			published int
		)
		if err := rows.Scan(&item.ID, &item.Type, &item.Title, &author, &published, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		item.AuthorID = author.Int64
		item.Published = published == 1
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func sortedNames(values map[string]viewfield.Value) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
