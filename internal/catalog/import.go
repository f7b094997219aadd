package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robertguss/viewfield/internal/db"
)

// ImportFile is the YAML document read by Import.
//
//	views:
//	  - name: recent_articles
//	    label: Recent articles
//	    base: content
//	    displays:
//	      - id: block_1
//	        kind: block
//	        max_args: 1
type ImportFile struct {
	Views []ImportView `yaml:"views"`
}

type ImportView struct {
	Name     string          `yaml:"name"`
	Label    string          `yaml:"label"`
	Base     string          `yaml:"base"`
	Enabled  *bool           `yaml:"enabled"`
	Displays []ImportDisplay `yaml:"displays"`
}

type ImportDisplay struct {
	ID           string `yaml:"id"`
	Kind         string `yaml:"kind"`
	Title        string `yaml:"title"`
	MaxArgs      *int   `yaml:"max_args"`
	ItemsPerPage int    `yaml:"items_per_page"`
	Enabled      *bool  `yaml:"enabled"`
}

type ImportResult struct {
	Views    int `json:"views"`
	Displays int `json:"displays"`
}

var yamlDecode = func(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Import upserts every view and display in r within one transaction. Views
// always end up with a default display.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var file ImportFile
	if err := yamlDecode(r, &file); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{}, fmt.Errorf("%w: import file is empty", ErrInvalidInput)
		}
		return ImportResult{}, fmt.Errorf("decode import file: %w", err)
	}
	if len(file.Views) == 0 {
		return ImportResult{}, fmt.Errorf("%w: import file declares no views", ErrInvalidInput)
	}

	type row struct {
		view     ImportView
		displays []Display
	}
	rows := make([]row, 0, len(file.Views))
	for _, v := range file.Views {
		v.Name = strings.TrimSpace(v.Name)
		v.Base = strings.TrimSpace(v.Base)
		if !machineName.MatchString(v.Name) {
			return ImportResult{}, fmt.Errorf("%w: view name %q must match %s", ErrInvalidInput, v.Name, machineName)
		}
		if v.Base != BaseContent && v.Base != BaseAccounts {
			return ImportResult{}, fmt.Errorf("%w: view %s: base %q must be %q or %q", ErrInvalidInput, v.Name, v.Base, BaseContent, BaseAccounts)
		}
		if strings.TrimSpace(v.Label) == "" {
			v.Label = v.Name
		}

		hasDefault := false
		displays := make([]Display, 0, len(v.Displays)+1)
		for _, in := range v.Displays {
			maxArgs := 1
			if in.MaxArgs != nil {
				maxArgs = *in.MaxArgs
			}
			d, err := normalizeDisplay(DisplayInput{View: v.Name, ID: in.ID, Kind: in.Kind, Title: in.Title, MaxArgs: maxArgs, ItemsPerPage: in.ItemsPerPage})
			if err != nil {
				return ImportResult{}, fmt.Errorf("view %s: %w", v.Name, err)
			}
			if in.Enabled != nil {
				d.Enabled = *in.Enabled
			}
			if d.ID == "default" {
				hasDefault = true
			}
			displays = append(displays, d)
		}
		if !hasDefault {
			displays = append([]Display{{ViewName: v.Name, ID: "default", Kind: "default", Title: "Default", Enabled: true, MaxArgs: 1}}, displays...)
		}
		rows = append(rows, row{view: v, displays: displays})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	var result ImportResult
	for _, item := range rows {
		enabled := item.view.Enabled == nil || *item.view.Enabled
		if _, err := tx.ExecContext(ctx, `
INSERT INTO views (name, label, base, enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    label = excluded.label,
    base = excluded.base,
    enabled = excluded.enabled,
    updated_at = excluded.updated_at;
`, item.view.Name, item.view.Label, item.view.Base, db.BoolToInt(enabled), now, now); err != nil {
			return ImportResult{}, fmt.Errorf("upsert view %s: %w", item.view.Name, err)
		}
		result.Views++

		for _, d := range item.displays {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO view_displays (view_name, display_id, kind, title, enabled, max_args, items_per_page)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(view_name, display_id) DO UPDATE SET
    kind = excluded.kind,
    title = excluded.title,
    enabled = excluded.enabled,
    max_args = excluded.max_args,
    items_per_page = excluded.items_per_page;
`, d.ViewName, d.ID, d.Kind, d.Title, db.BoolToInt(d.Enabled), d.MaxArgs, d.ItemsPerPage); err != nil {
				return ImportResult{}, fmt.Errorf("upsert display %s|%s: %w", d.ViewName, d.ID, err)
			}
			result.Displays++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import tx: %w", err)
	}
	return result, nil
}
