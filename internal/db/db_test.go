package db

import (
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	databasepkg "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	sourcepkg "github.com/golang-migrate/migrate/v4/source"
)

func TestPathsAndEnsureDataDir(t *testing.T) {
	root := t.TempDir()
	wantDir := filepath.Join(root, ".viewfield")
	if got := DataDir(root); got != wantDir {
		t.Fatalf("DataDir() = %q, want %q", got, wantDir)
	}
	wantDB := filepath.Join(wantDir, "viewfield.db")
	if got := DBPath(root); got != wantDB {
		t.Fatalf("DBPath() = %q, want %q", got, wantDB)
	}

	dir, err := EnsureDataDir(root)
	if err != nil {
		t.Fatalf("EnsureDataDir() error = %v", err)
	}
	if dir != wantDir {
		t.Fatalf("EnsureDataDir() = %q, want %q", dir, wantDir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("stat data dir: %v", err)
	}
}

func TestEnsureDataDirError(t *testing.T) {
	rootFile := filepath.Join(t.TempDir(), "as-file")
	if err := os.WriteFile(rootFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := EnsureDataDir(rootFile); err == nil || !strings.Contains(err.Error(), "create") {
		t.Fatalf("expected create error, got %v", err)
	}
}

func TestFindSiteRoot(t *testing.T) {
	root := t.TempDir()
	if _, err := EnsureDataDir(root); err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	got, err := FindSiteRoot(nested)
	if err != nil {
		t.Fatalf("FindSiteRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Fatalf("FindSiteRoot() = %q, want %q", got, want)
	}

	if _, err := FindSiteRoot(t.TempDir()); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestEnsureGitIgnore(t *testing.T) {
	root := t.TempDir()

	if err := EnsureGitIgnore(root); err != nil {
		t.Fatalf("EnsureGitIgnore() first call error = %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		t.Fatalf("read .gitignore: %v", err)
	}
	if got := string(b); got != ".viewfield/viewfield.db\n" {
		t.Fatalf("unexpected .gitignore content: %q", got)
	}

	if err := EnsureGitIgnore(root); err != nil {
		t.Fatalf("EnsureGitIgnore() second call error = %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(root, ".gitignore"))
	if strings.Count(string(b), ".viewfield/viewfield.db") != 1 {
		t.Fatalf("entry duplicated: %q", string(b))
	}

	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules"), 0o644); err != nil {
		t.Fatalf("seed .gitignore: %v", err)
	}
	if err := EnsureGitIgnore(root); err != nil {
		t.Fatalf("EnsureGitIgnore() with missing newline error = %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(root, ".gitignore"))
	if got := string(b); got != "node_modules\n.viewfield/viewfield.db\n" {
		t.Fatalf("unexpected newline handling: %q", got)
	}
}

func TestEnsureGitIgnoreReadError(t *testing.T) {
	fileRoot := filepath.Join(t.TempDir(), "rootfile")
	if err := os.WriteFile(fileRoot, []byte("x"), 0o644); err != nil {
		t.Fatalf("write root file: %v", err)
	}
	if err := EnsureGitIgnore(fileRoot); err == nil || !strings.Contains(err.Error(), "read .gitignore") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestOpenRunMigrationsAndSeed(t *testing.T) {
	root := t.TempDir()
	if _, err := EnsureDataDir(root); err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	conn, err := Open(DBPath(root))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	if v, _, err := SchemaVersion(conn); err == nil || v != 0 {
		t.Fatalf("expected missing schema_migrations before init, got v=%d err=%v", v, err)
	}

	if err := RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations first call: %v", err)
	}
	if err := RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations second call: %v", err)
	}

	version, dirty, err := SchemaVersion(conn)
	if err != nil || dirty || version != 2 {
		t.Fatalf("SchemaVersion = %d dirty=%v err=%v", version, dirty, err)
	}

	var name string
	if err := conn.QueryRow(`SELECT name FROM accounts WHERE id = 1;`).Scan(&name); err != nil || name != "admin" {
		t.Fatalf("seed account = %q, %v", name, err)
	}
	var displays int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM view_displays WHERE view_name = 'user_admin_people';`).Scan(&displays); err != nil || displays != 2 {
		t.Fatalf("seed displays = %d, %v", displays, err)
	}

	if _, err := conn.Exec(`INSERT INTO content (type, title, created_at, updated_at) VALUES ('missing', 'x', 'now', 'now');`); err == nil {
		t.Fatal("expected foreign key violation for unknown content type")
	}
}

func TestRunMigrationsKeepsConnectionOpen(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	if err := RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Fatalf("Ping after RunMigrations: %v", err)
	}
	version, _, err := SchemaVersion(conn)
	if err != nil || version != 2 {
		t.Fatalf("SchemaVersion after RunMigrations = %d, %v", version, err)
	}
	var types int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM content_types;`).Scan(&types); err != nil || types != 2 {
		t.Fatalf("query after RunMigrations = %d, %v", types, err)
	}
}

func TestOpenAndMigrationErrors(t *testing.T) {
	origOpen := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) {
		return nil, errors.New("open fail")
	}
	if _, err := Open("ignored"); err == nil || !strings.Contains(err.Error(), "open sqlite db") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	sqlOpen = origOpen

	dirAsDB := filepath.Join(t.TempDir(), "as-dir")
	if err := os.MkdirAll(dirAsDB, 0o755); err != nil {
		t.Fatalf("mkdir dirAsDB: %v", err)
	}
	if _, err := Open(dirAsDB); err == nil {
		t.Fatal("expected Open to fail for directory path")
	}
}

func TestRunMigrationsInjectedErrors(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "inject.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	origSource := newIOFSSource
	origSQLite := newSQLiteWithInstance
	origMigrator := newMigratorWithInstance
	origMigrateUp := migrateUp
	defer func() {
		newIOFSSource = origSource
		newSQLiteWithInstance = origSQLite
		newMigratorWithInstance = origMigrator
		migrateUp = origMigrateUp
	}()

	newIOFSSource = func(fs.FS, string) (sourcepkg.Driver, error) {
		return nil, errors.New("source fail")
	}
	if err := RunMigrations(conn); err == nil || !strings.Contains(err.Error(), "open migrations fs") {
		t.Fatalf("expected source error, got %v", err)
	}

	newIOFSSource = origSource
	newSQLiteWithInstance = func(*sql.DB, *sqlite.Config) (databasepkg.Driver, error) {
		return nil, errors.New("sqlite driver fail")
	}
	if err := RunMigrations(conn); err == nil || !strings.Contains(err.Error(), "create sqlite migrate driver") {
		t.Fatalf("expected sqlite driver error, got %v", err)
	}

	newSQLiteWithInstance = origSQLite
	newMigratorWithInstance = func(string, sourcepkg.Driver, string, databasepkg.Driver) (*migrate.Migrate, error) {
		return nil, errors.New("migrator fail")
	}
	if err := RunMigrations(conn); err == nil || !strings.Contains(err.Error(), "create migrator") {
		t.Fatalf("expected migrator error, got %v", err)
	}

	newMigratorWithInstance = origMigrator
	migrateUp = func(*migrate.Migrate) error { return errors.New("up fail") }
	if err := RunMigrations(conn); err == nil || !strings.Contains(err.Error(), "apply migrations") {
		t.Fatalf("expected migrate up error, got %v", err)
	}

	migrateUp = func(*migrate.Migrate) error { return migrate.ErrNoChange }
	if err := RunMigrations(conn); err != nil {
		t.Fatalf("expected ErrNoChange to be ignored, got %v", err)
	}
}

func TestBoolToInt(t *testing.T) {
	if BoolToInt(true) != 1 || BoolToInt(false) != 0 {
		t.Fatal("BoolToInt mismatch")
	}
}
