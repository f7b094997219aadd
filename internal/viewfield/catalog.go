package viewfield

import (
	"context"
	"slices"
	"sync"
)

// Catalog answers which views and enabled displays exist. Implementations
// report a disabled view as not found.
type Catalog interface {
	ListDisplays(ctx context.Context, viewName string) (displays []string, found bool, err error)
	Exists(ctx context.Context, viewName, displayName string) (bool, error)
}

// Renderer executes a view display. Its errors are passed through to callers
// of ResolveForDisplay unchanged.
type Renderer interface {
	Render(ctx context.Context, viewName, displayName string, args []string) (Fragment, error)
}

// Fragment is rendered markup, returned verbatim from a Renderer.
type Fragment string

func (f Fragment) IsEmpty() bool { return f == "" }

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(ctx context.Context, viewName, displayName string, args []string) (Fragment, error)

func (f RendererFunc) Render(ctx context.Context, viewName, displayName string, args []string) (Fragment, error) {
	return f(ctx, viewName, displayName, args)
}

// CatalogEntry seeds a MemoryCatalog with one view and its displays.
type CatalogEntry struct {
	ViewName string
	Displays []string
}

// MemoryCatalog is a Catalog held in memory.
type MemoryCatalog struct {
	mu    sync.RWMutex
	views map[string][]string
}

func NewMemoryCatalog(entries ...CatalogEntry) *MemoryCatalog {
	c := &MemoryCatalog{views: make(map[string][]string, len(entries))}
	for _, e := range entries {
		c.Put(e)
	}
	return c
}

// Put replaces the entry for e.ViewName.
func (c *MemoryCatalog) Put(e CatalogEntry) {
	displays := slices.Clone(e.Displays)
	slices.Sort(displays)
	displays = slices.Compact(displays)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[e.ViewName] = displays
}

func (c *MemoryCatalog) Remove(viewName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, viewName)
}

func (c *MemoryCatalog) ListDisplays(_ context.Context, viewName string) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	displays, ok := c.views[viewName]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(displays), true, nil
}

func (c *MemoryCatalog) Exists(_ context.Context, viewName, displayName string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	displays, ok := c.views[viewName]
	if !ok {
		return false, nil
	}
	_, found := slices.BinarySearch(displays, displayName)
	return found, nil
}
