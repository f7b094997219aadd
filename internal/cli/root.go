package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robertguss/viewfield/internal/content"
	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/logger"
)

// RootEnv names a site root that takes precedence over discovery.
const RootEnv = "VIEWFIELD_ROOT"

var (
	osGetwd      = os.Getwd
	findSiteRoot = db.FindSiteRoot
	newLogger    = logger.New
)

type App struct {
	Context       context.Context
	Root          string
	Logger        *zap.Logger
	RenderTimeout time.Duration
	NoPrompt      bool
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func NewRootCommand(ctx context.Context) (*cobra.Command, error) {
	cwd, err := osGetwd()
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}

	siteRoot := os.Getenv(RootEnv)
	if siteRoot == "" {
		siteRoot, err = findSiteRoot(cwd)
		if err != nil {
			siteRoot = cwd
		}
	}

	app := &App{Context: ctx, Root: siteRoot, RenderTimeout: content.DefaultRenderTimeout}
	var verbose bool

	root := &cobra.Command{
		Use:           "viewfield",
		Short:         "Viewfield stores and renders references to views on content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(os.Stderr, verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.Logger = log.With(zap.String("root", app.Root))
			app.Logger.Debug("command start", zap.String("command", cmd.CommandPath()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.Root, "root", siteRoot, "Site root holding the .viewfield directory")
	flags.DurationVar(&app.RenderTimeout, "render-timeout", content.DefaultRenderTimeout, "Per-field render time limit (0 disables)")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
	flags.BoolVar(&app.NoPrompt, "no-prompt", false, "Never prompt for confirmation")

	root.AddCommand(newInitCommand(app))
	root.AddCommand(newStatusCommand(app))
	root.AddCommand(newResetCommand(app))
	root.AddCommand(newVersionCommand())
	root.AddCommand(newViewCommand(app))
	root.AddCommand(newTypeCommand(app))
	root.AddCommand(newAccountCommand(app))
	root.AddCommand(newFieldCommand(app))
	root.AddCommand(newContentCommand(app))

	return root, nil
}
