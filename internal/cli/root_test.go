package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewRootCommandAndErrors(t *testing.T) {
	origGetwd := osGetwd
	origFind := findSiteRoot
	defer func() {
		osGetwd = origGetwd
		findSiteRoot = origFind
	}()
	t.Setenv(RootEnv, "")

	root := t.TempDir()
	osGetwd = func() (string, error) { return root, nil }
	findSiteRoot = func(string) (string, error) { return root, nil }

	cmd, err := NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand success error: %v", err)
	}
	if cmd.Use != "viewfield" {
		t.Fatalf("unexpected root use: %q", cmd.Use)
	}
	if len(cmd.Commands()) != 9 {
		t.Fatalf("expected 9 subcommands, got %d", len(cmd.Commands()))
	}
	for _, name := range []string{"root", "render-timeout", "verbose", "no-prompt"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("missing persistent flag %q", name)
		}
	}

	osGetwd = func() (string, error) { return "", errors.New("cwd fail") }
	if _, err := NewRootCommand(context.Background()); err == nil || !strings.Contains(err.Error(), "resolve cwd") {
		t.Fatalf("expected cwd error, got %v", err)
	}
}

func TestNewRootCommandRootSelection(t *testing.T) {
	origGetwd := osGetwd
	origFind := findSiteRoot
	defer func() {
		osGetwd = origGetwd
		findSiteRoot = origFind
	}()

	cwd := t.TempDir()
	osGetwd = func() (string, error) { return cwd, nil }
	findSiteRoot = func(string) (string, error) { return "", errors.New("not found") }
	t.Setenv(RootEnv, "")

	cmd, err := NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand fallback error: %v", err)
	}
	out, _, execErr := runCommandWithCapture(t, cmd, []string{"init", "--json"})
	if execErr != nil {
		t.Fatalf("execute root init: %v", execErr)
	}
	if !strings.Contains(out, cwd) {
		t.Fatalf("expected cwd root in output, got %q", out)
	}

	envRoot := t.TempDir()
	t.Setenv(RootEnv, envRoot)
	cmd, err = NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand env error: %v", err)
	}
	out, _, execErr = runCommandWithCapture(t, cmd, []string{"init", "--json"})
	if execErr != nil || !strings.Contains(out, envRoot) {
		t.Fatalf("expected env root in output, got %q (%v)", out, execErr)
	}

	flagRoot := t.TempDir()
	cmd, err = NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand flag error: %v", err)
	}
	out, _, execErr = runCommandWithCapture(t, cmd, []string{"--root", flagRoot, "init", "--json"})
	if execErr != nil || !strings.Contains(out, flagRoot) {
		t.Fatalf("expected flag root in output, got %q (%v)", out, execErr)
	}
}

func TestRootCommandLogger(t *testing.T) {
	origGetwd := osGetwd
	origLogger := newLogger
	defer func() {
		osGetwd = origGetwd
		newLogger = origLogger
	}()

	root := t.TempDir()
	t.Setenv(RootEnv, root)
	osGetwd = func() (string, error) { return root, nil }

	var gotVerbose bool
	newLogger = func(_ io.Writer, verbose bool) (*zap.Logger, error) {
		gotVerbose = verbose
		return zap.NewNop(), nil
	}
	cmd, err := NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand: %v", err)
	}
	if _, _, err := runCommandWithCapture(t, cmd, []string{"--verbose", "version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !gotVerbose {
		t.Fatal("expected --verbose to reach the logger")
	}

	newLogger = func(io.Writer, bool) (*zap.Logger, error) { return nil, errors.New("bad level") }
	cmd, err = NewRootCommand(context.Background())
	if err != nil {
		t.Fatalf("NewRootCommand: %v", err)
	}
	if _, _, err := runCommandWithCapture(t, cmd, []string{"version"}); err == nil || !strings.Contains(err.Error(), "initialize logger") {
		t.Fatalf("expected logger error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommandWithCapture(t, newVersionCommand(), []string{"--json"})
	if err != nil || !strings.Contains(out, "\"go_version\"") {
		t.Fatalf("version --json out=%q err=%v", out, err)
	}
	out, _, err = runCommandWithCapture(t, newVersionCommand(), nil)
	if err != nil || !strings.HasPrefix(out, "viewfield ") {
		t.Fatalf("version text out=%q err=%v", out, err)
	}
}
