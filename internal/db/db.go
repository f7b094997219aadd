package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	DataDirName = ".viewfield"
	DBFileName  = "viewfield.db"
)

var sqlOpen = sql.Open

func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

func DBPath(root string) string {
	return filepath.Join(DataDir(root), DBFileName)
}

func EnsureDataDir(root string) (string, error) {
	dir := DataDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// FindSiteRoot walks up from start to the first directory holding a data dir.
func FindSiteRoot(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	for {
		if info, err := os.Stat(DataDir(current)); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New(DataDirName + " not found in current directory or parents")
		}
		current = parent
	}
}

func Open(path string) (*sql.DB, error) {
	conn, err := sqlOpen("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return conn, nil
}

func EnsureGitIgnore(root string) error {
	target := DataDirName + "/" + DBFileName
	path := filepath.Join(root, ".gitignore")

	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .gitignore: %w", err)
	}
	if strings.Contains(string(raw), target) {
		return nil
	}

	var next string
	if len(raw) == 0 {
		next = target + "\n"
	} else {
		next = string(raw)
		if !strings.HasSuffix(next, "\n") {
			next += "\n"
		}
		next += target + "\n"
	}

	if err := os.WriteFile(path, []byte(next), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}

func BoolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
