package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrTypeNotFound = errors.New("content type not found")
	typePattern     = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)
)

type Type struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (s *Service) AddType(ctx context.Context, typ, name string) (Type, error) {
	typ = strings.TrimSpace(typ)
	name = strings.TrimSpace(name)
	if !typePattern.MatchString(typ) {
		return Type{}, fmt.Errorf("%w: content type %q must match %s", ErrInvalidInput, typ, typePattern)
	}
	if name == "" {
		name = typ
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO content_types (type, name) VALUES (?, ?);`, typ, name); err != nil {
		return Type{}, fmt.Errorf("insert content type: %w", err)
	}
	return Type{Type: typ, Name: name}, nil
}

func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, name FROM content_types ORDER BY type;`)
	if err != nil {
		return nil, fmt.Errorf("query content types: %w", err)
	}
	defer rows.Close()

	out := []Type{}
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.Type, &t.Name); err != nil {
			return nil, fmt.Errorf("scan content type: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content types: %w", err)
	}
	return out, nil
}

func (s *Service) TypeExists(ctx context.Context, typ string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_types WHERE type = ?;`, typ).Scan(&n); err != nil {
		return false, fmt.Errorf("query content type: %w", err)
	}
	return n > 0, nil
}
