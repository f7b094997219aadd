package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/viewfield"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	BaseContent  = "content"
	BaseAccounts = "accounts"
)

var (
	machineName  = regexp.MustCompile(`^[a-z0-9_]+$`)
	displayKinds = map[string]bool{"default": true, "page": true, "block": true, "embed": true}
)

type View struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Base      string    `json:"base"`
	Enabled   bool      `json:"enabled"`
	Displays  []Display `json:"displays"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type Display struct {
	ViewName     string `json:"view_name"`
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Enabled      bool   `json:"enabled"`
	MaxArgs      int    `json:"max_args"`
	ItemsPerPage int    `json:"items_per_page"`
}

type ViewInput struct {
	Name  string
	Label string
	Base  string
}

type DisplayInput struct {
	View         string
	ID           string
	Kind         string
	Title        string
	MaxArgs      int
	ItemsPerPage int
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Service struct {
	db *sql.DB
}

var _ viewfield.Catalog = (*Service)(nil)

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn}
}

func (s *Service) ListDisplays(ctx context.Context, viewName string) ([]string, bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx, `SELECT enabled FROM views WHERE name = ?;`, viewName).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query view: %w", err)
	}
	if enabled != 1 {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT display_id FROM view_displays
WHERE view_name = ? AND enabled = 1
ORDER BY display_id;
`, viewName)
	if err != nil {
		return nil, false, fmt.Errorf("query displays: %w", err)
	}
	defer rows.Close()

	displays := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, false, fmt.Errorf("scan display: %w", err)
		}
		displays = append(displays, id)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate displays: %w", err)
	}
	return displays, true, nil
}

func (s *Service) Exists(ctx context.Context, viewName, displayName string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM view_displays d
JOIN views v ON v.name = d.view_name
WHERE d.view_name = ? AND d.display_id = ? AND d.enabled = 1 AND v.enabled = 1;
`, viewName, displayName).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query display exists: %w", err)
	}
	return n > 0, nil
}

func (s *Service) AddView(ctx context.Context, in ViewInput) (View, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Label = strings.TrimSpace(in.Label)
	in.Base = strings.TrimSpace(in.Base)
	if !machineName.MatchString(in.Name) {
		return View{}, fmt.Errorf("%w: view name %q must match %s", ErrInvalidInput, in.Name, machineName)
	}
	if in.Base != BaseContent && in.Base != BaseAccounts {
		return View{}, fmt.Errorf("%w: base %q must be %q or %q", ErrInvalidInput, in.Base, BaseContent, BaseAccounts)
	}
	if in.Label == "" {
		in.Label = in.Name
	}

	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return View{}, fmt.Errorf("begin view tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO views (name, label, base, enabled, created_at, updated_at)
VALUES (?, ?, ?, 1, ?, ?);
`, in.Name, in.Label, in.Base, now, now); err != nil {
		return View{}, fmt.Errorf("insert view: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO view_displays (view_name, display_id, kind, title, enabled, max_args, items_per_page)
VALUES (?, 'default', 'default', 'Default', 1, 1, 0);
`, in.Name); err != nil {
		return View{}, fmt.Errorf("insert default display: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return View{}, fmt.Errorf("commit view tx: %w", err)
	}
	return s.GetView(ctx, in.Name)
}

func (s *Service) AddDisplay(ctx context.Context, in DisplayInput) (Display, error) {
	d, err := normalizeDisplay(in)
	if err != nil {
		return Display{}, err
	}
	if _, err := s.GetView(ctx, d.ViewName); err != nil {
		return Display{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO view_displays (view_name, display_id, kind, title, enabled, max_args, items_per_page)
VALUES (?, ?, ?, ?, 1, ?, ?);
`, d.ViewName, d.ID, d.Kind, d.Title, d.MaxArgs, d.ItemsPerPage); err != nil {
		return Display{}, fmt.Errorf("insert display: %w", err)
	}
	return d, nil
}

func normalizeDisplay(in DisplayInput) (Display, error) {
	d := Display{
		ViewName:     strings.TrimSpace(in.View),
		ID:           strings.TrimSpace(in.ID),
		Kind:         strings.TrimSpace(in.Kind),
		Title:        strings.TrimSpace(in.Title),
		Enabled:      true,
		MaxArgs:      in.MaxArgs,
		ItemsPerPage: in.ItemsPerPage,
	}
	if !machineName.MatchString(d.ID) {
		return Display{}, fmt.Errorf("%w: display id %q must match %s", ErrInvalidInput, d.ID, machineName)
	}
	if d.Kind == "" {
		d.Kind = "embed"
		if d.ID == viewfield.DefaultDisplay {
			d.Kind = "default"
		}
	}
	if !displayKinds[d.Kind] {
		return Display{}, fmt.Errorf("%w: display kind %q must be one of default, page, block, embed", ErrInvalidInput, d.Kind)
	}
	if d.MaxArgs < 0 || d.ItemsPerPage < 0 {
		return Display{}, fmt.Errorf("%w: max args and items per page must not be negative", ErrInvalidInput)
	}
	if d.Title == "" {
		d.Title = d.ID
	}
	return d, nil
}

func (s *Service) SetViewEnabled(ctx context.Context, name string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE views SET enabled = ?, updated_at = ? WHERE name = ?;`,
		db.BoolToInt(enabled), time.Now().UTC().Format(time.RFC3339), name)
	if err != nil {
		return fmt.Errorf("update view: %w", err)
	}
	return requireAffected(res, "view "+name)
}

func (s *Service) SetDisplayEnabled(ctx context.Context, view, display string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE view_displays SET enabled = ? WHERE view_name = ? AND display_id = ?;`,
		db.BoolToInt(enabled), view, display)
	if err != nil {
		return fmt.Errorf("update display: %w", err)
	}
	return requireAffected(res, "display "+view+"|"+display)
}

func (s *Service) RemoveView(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE name = ?;`, name)
	if err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	return requireAffected(res, "view "+name)
}

func (s *Service) RemoveDisplay(ctx context.Context, view, display string) error {
	if display == viewfield.DefaultDisplay {
		return fmt.Errorf("%w: the default display cannot be removed", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM view_displays WHERE view_name = ? AND display_id = ?;`, view, display)
	if err != nil {
		return fmt.Errorf("delete display: %w", err)
	}
	return requireAffected(res, "display "+view+"|"+display)
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func (s *Service) GetView(ctx context.Context, name string) (View, error) {
	var (
		v       View
		enabled int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT name, label, base, enabled, created_at, updated_at FROM views WHERE name = ?;
`, name).Scan(&v.Name, &v.Label, &v.Base, &enabled, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return View{}, fmt.Errorf("view %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return View{}, fmt.Errorf("query view: %w", err)
	}
	v.Enabled = enabled == 1

	displays, err := s.displays(ctx, `WHERE view_name = ?`, name)
	if err != nil {
		return View{}, err
	}
	v.Displays = displays
	return v, nil
}

func (s *Service) ListViews(ctx context.Context) ([]View, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, label, base, enabled, created_at, updated_at FROM views ORDER BY name;
`)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	views := []View{}
	index := map[string]int{}
	for rows.Next() {
		var (
			v       View
			enabled int
		)
		if err := rows.Scan(&v.Name, &v.Label, &v.Base, &enabled, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		v.Enabled = enabled == 1
		v.Displays = []Display{}
		index[v.Name] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate views: %w", err)
	}

	displays, err := s.displays(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, d := range displays {
		if i, ok := index[d.ViewName]; ok {
			views[i].Displays = append(views[i].Displays, d)
		}
	}
	return views, nil
}

func (s *Service) displays(ctx context.Context, where string, args ...any) ([]Display, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT view_name, display_id, kind, title, enabled, max_args, items_per_page
FROM view_displays `+where+`
ORDER BY view_name, CASE WHEN display_id = 'default' THEN 0 ELSE 1 END, display_id;
`, args...)
	if err != nil {
		return nil, fmt.Errorf("query displays: %w", err)
	}
	defer rows.Close()

	out := []Display{}
	for rows.Next() {
		var (
			d       Display
			enabled int
		)
		if err := rows.Scan(&d.ViewName, &d.ID, &d.Kind, &d.Title, &enabled, &d.MaxArgs, &d.ItemsPerPage); err != nil {
			return nil, fmt.Errorf("scan display: %w", err)
		}
		d.Enabled = enabled == 1
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate displays: %w", err)
	}
	return out, nil
}

// Options lists every selectable view|display pair, as offered by the field widget.
func (s *Service) Options(ctx context.Context) ([]Option, error) {
	views, err := s.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	out := []Option{}
	for _, v := range views {
		if !v.Enabled {
			continue
		}
		for _, d := range v.Displays {
			if !d.Enabled {
				continue
			}
			value := viewfield.Value{ViewName: v.Name, DisplayName: d.ID}
			out = append(out, Option{Value: value.Selection(), Label: fmt.Sprintf("%s (%s)", v.Label, d.Title)})
		}
	}
	return out, nil
}
