package render

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/robertguss/viewfield/internal/viewfield"
)

var (
	ErrDisplayNotFound  = errors.New("display not found")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrUnknownBase      = errors.New("unknown view base")
)

// AllArgument disables the contextual filter it stands in for.
const AllArgument = "all"

type Row struct {
	ID    int64
	Label string
	Href  string
}

type display struct {
	View         string
	Display      string
	Base         string
	Title        string
	MaxArgs      int
	ItemsPerPage int
}

type viewData struct {
	Classes string
	Rows    []Row
}

var viewTemplate = template.Must(template.New("view").Parse(
	`<div class="{{.Classes}}">` +
		`{{if .Rows}}<div class="view-content">` +
		`{{range .Rows}}<div class="views-row"><a href="{{.Href}}">{{.Label}}</a></div>{{end}}` +
		`</div>{{else}}<div class="view-empty"></div>{{end}}` +
		`</div>`))

type Service struct {
	db *sql.DB
}

var _ viewfield.Renderer = (*Service)(nil)

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn}
}

func (s *Service) Render(ctx context.Context, viewName, displayName string, args []string) (viewfield.Fragment, error) {
	d, err := s.loadDisplay(ctx, viewName, displayName)
	if err != nil {
		return "", err
	}
	if len(args) > d.MaxArgs {
		return "", fmt.Errorf("%w: %s|%s accepts %d, got %d", ErrTooManyArguments, viewName, displayName, d.MaxArgs, len(args))
	}

	rows, err := s.Rows(ctx, d.Base, args, d.ItemsPerPage)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = viewTemplate.Execute(&buf, viewData{
		Classes: strings.Join([]string{
			"view",
			"view-" + CSSClass(viewName),
			"view-id-" + viewName,
			"view-display-id-" + displayName,
		}, " "),
		Rows: rows,
	})
	if err != nil {
		return "", fmt.Errorf("execute view markup: %w", err)
	}
	return viewfield.Fragment(buf.String()), nil
}

func (s *Service) loadDisplay(ctx context.Context, viewName, displayName string) (display, error) {
	d := display{View: viewName, Display: displayName}
	err := s.db.QueryRowContext(ctx, `
SELECT v.base, d.title, d.max_args, d.items_per_page
FROM view_displays d
JOIN views v ON v.name = d.view_name
WHERE d.view_name = ? AND d.display_id = ?;
`, viewName, displayName).Scan(&d.Base, &d.Title, &d.MaxArgs, &d.ItemsPerPage)
	if errors.Is(err, sql.ErrNoRows) {
		return display{}, fmt.Errorf("%w: %s|%s", ErrDisplayNotFound, viewName, displayName)
	}
	if err != nil {
		return display{}, fmt.Errorf("load display: %w", err)
	}
	return d, nil
}

// Rows runs the base query for a view. The first argument filters accounts
// by id and content by type.
func (s *Service) Rows(ctx context.Context, base string, args []string, limit int) ([]Row, error) {
	var (
		query  string
		params []any
		href   string
	)
	filter := ""
	if len(args) > 0 && args[0] != AllArgument {
		filter = args[0]
	}

	switch base {
	case "accounts":
		href = "/user/"
		query = `SELECT id, name FROM accounts WHERE status = 1`
		if filter != "" {
			id, err := strconv.ParseInt(filter, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("account argument %q: %w", filter, err)
			}
			query += ` AND id = ?`
			params = append(params, id)
		}
	case "content":
		href = "/node/"
		query = `SELECT id, title FROM content WHERE published = 1`
		if filter != "" {
			query += ` AND type = ?`
			params = append(params, filter)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBase, base)
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		params = append(params, limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", params...)
	if err != nil {
		return nil, fmt.Errorf("query %s rows: %w", base, err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Label); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", base, err)
		}
		r.Href = href + strconv.FormatInt(r.ID, 10)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", base, err)
	}
	return out, nil
}

// CSSClass turns an identifier into a class name: lowercase, with
// underscores, spaces and brackets mapped to hyphens.
func CSSClass(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', ' ', '[', ']':
			return '-'
		}
		return r
	}, s)
}
