package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/robertguss/viewfield/internal/account"
	"github.com/robertguss/viewfield/internal/catalog"
	"github.com/robertguss/viewfield/internal/content"
	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/field"
	"github.com/robertguss/viewfield/internal/render"
)

type dbNotInitializedError struct {
	Path string
}

func (e dbNotInitializedError) Error() string {
	return fmt.Sprintf("database not initialized at %s; run `viewfield init` first", e.Path)
}

func openExistingDB(app *App) (*sql.DB, error) {
	path := db.DBPath(app.Root)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dbNotInitializedError{Path: path}
		}
		return nil, fmt.Errorf("stat db file: %w", err)
	}

	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// site wires every service over one connection.
type site struct {
	conn     *sql.DB
	catalog  *catalog.Service
	renderer *render.Service
	fields   *field.Service
	content  *content.Service
	accounts *account.Service
}

func openSite(app *App) (*site, error) {
	conn, err := openExistingDB(app)
	if err != nil {
		return nil, err
	}
	cat := catalog.NewService(conn)
	renderer := render.NewService(conn)
	return &site{
		conn:     conn,
		catalog:  cat,
		renderer: renderer,
		fields:   field.NewService(conn, cat),
		content: content.NewService(conn, cat, renderer,
			content.WithLogger(app.logger()),
			content.WithRenderTimeout(app.RenderTimeout)),
		accounts: account.NewService(conn),
	}, nil
}

func (s *site) Close() error {
	return s.conn.Close()
}
