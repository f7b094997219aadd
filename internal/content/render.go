package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/robertguss/viewfield/internal/render"
	"github.com/robertguss/viewfield/internal/viewfield"
)

type RenderedField struct {
	Name     string             `json:"name"`
	Value    viewfield.Value    `json:"value"`
	Fragment viewfield.Fragment `json:"fragment"`
	Error    string             `json:"error,omitempty"`
}

type Page struct {
	ID     int64           `json:"id"`
	Type   string          `json:"type"`
	Title  string          `json:"title"`
	Fields []RenderedField `json:"fields"`
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"css":    render.CSSClass,
	"markup": func(f viewfield.Fragment) template.HTML { return template.HTML(f) },
}).Parse(
	`<article class="node node--type-{{css .Type}}">` +
		`<h1>{{.Title}}</h1>` +
		`{{range .Fields}}<div class="field field--name-{{css .Name}}">{{markup .Fragment}}</div>{{end}}` +
		`</article>`))

// maxRenderWorkers bounds how many fields of one page resolve at once.
const maxRenderWorkers = 4

// Render resolves every field of item id. A field that fails to resolve
// renders empty and is reported on the logger; it never fails the page.
// Render stops early only when ctx itself is done.
func (s *Service) Render(ctx context.Context, id int64) (Page, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Page{}, err
	}

	names := sortedNames(item.Fields)
	fields := make([]RenderedField, len(names))

	var eg errgroup.Group
	eg.SetLimit(maxRenderWorkers)
	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fields[i] = s.renderField(ctx, item.ID, name, item.Fields[name])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Page{}, fmt.Errorf("render content %d: %w", item.ID, err)
	}

	return Page{ID: item.ID, Type: item.Type, Title: item.Title, Fields: fields}, nil
}

func (s *Service) renderField(ctx context.Context, id int64, name string, v viewfield.Value) RenderedField {
	out := RenderedField{Name: name, Value: v}
	if s.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.renderTimeout)
		defer cancel()
	}

	frag, err := viewfield.ResolveForDisplay(ctx, s.catalog, s.renderer, v)
	if err != nil {
		s.logger.Warn("view field render failed",
			zap.Int64("content_id", id),
			zap.String("field", name),
			zap.String("view", v.ViewName),
			zap.String("display", v.DisplayName),
			zap.Error(err))
		out.Error = err.Error()
		return out
	}
	out.Fragment = frag
	return out
}

func (p Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("execute page markup: %w", err)
	}
	return buf.String(), nil
}
