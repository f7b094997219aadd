// Package install writes starter files into a site's data directory.
package install

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robertguss/viewfield/internal/db"
)

const ExampleCatalogName = "views.example.yaml"

//go:embed assets/*
var assetsFS embed.FS

// readAsset is a package-level var for testability.
var readAsset = func(name string) ([]byte, error) {
	return assetsFS.ReadFile(name)
}

// ExampleCatalog returns the embedded sample catalog in import format.
func ExampleCatalog() ([]byte, error) {
	data, err := readAsset("assets/" + ExampleCatalogName)
	if err != nil {
		return nil, fmt.Errorf("read embedded example catalog: %w", err)
	}
	return data, nil
}

// WriteExampleCatalog places the sample catalog in root's data directory and
// returns its path. An existing file is left alone; written reports whether
// this call created it.
func WriteExampleCatalog(root string) (path string, written bool, err error) {
	dir, err := db.EnsureDataDir(root)
	if err != nil {
		return "", false, err
	}
	path = filepath.Join(dir, ExampleCatalogName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("stat example catalog: %w", err)
	}

	data, err := ExampleCatalog()
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", false, fmt.Errorf("write example catalog: %w", err)
	}
	return path, true, nil
}
