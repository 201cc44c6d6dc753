// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/odooup/odooup/internal/app/pipeline"
	"github.com/odooup/odooup/internal/checkout"
	"github.com/odooup/odooup/internal/config"
	"github.com/odooup/odooup/internal/resolve"
	"github.com/odooup/odooup/internal/tui"
)

type (
	// Prompter asks the user yes/no questions.
	Prompter interface {
		// CanPrompt reports whether an answer can be read interactively.
		CanPrompt() bool
		Confirm(title, description string, def bool) (bool, error)
	}

	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App and reach configuration, git and the terminal through it.
	App struct {
		Config   config.Provider
		Backend  checkout.Backend
		Prompter Prompter
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Backend  checkout.Backend
		Prompter Prompter
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		configPath string
		verbose    bool
		root       string
	}

	// session is the state shared by one command invocation once flags and
	// configuration are resolved.
	session struct {
		app     *App
		cfg     *config.Config
		cfgPath string
		root    string
		verbose bool
		logger  *log.Logger
	}

	tuiPrompter struct{}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Backend:  deps.Backend,
		Prompter: deps.Prompter,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Backend == nil {
		app.Backend = checkout.NewGitBackend()
	}
	if app.Prompter == nil {
		app.Prompter = tuiPrompter{}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (tuiPrompter) CanPrompt() bool {
	return tui.CanPrompt()
}

func (tuiPrompter) Confirm(title, description string, def bool) (bool, error) {
	return tui.NewConfirm().Title(title).Description(description).Default(def).Run()
}

// newSession resolves the repository root and loads the configuration. The
// working-directory config file is looked up in the repository root.
func newSession(ctx context.Context, app *App, flags *rootFlagValues) (*session, error) {
	root, err := filepath.Abs(flags.root)
	if err != nil {
		return nil, err
	}
	loaded, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        root,
	})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || loaded.Config.UI.Verbose
	applyColorScheme(loaded.Config.UI.ColorScheme)
	return &session{
		app:     app,
		cfg:     loaded.Config,
		cfgPath: loaded.Path,
		root:    root,
		verbose: verbose,
		logger:  newLogger(app.stderr, verbose),
	}, nil
}

// newLogger creates the logger handed to library packages.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "odooup",
		Level:  level,
	})
}

func applyColorScheme(scheme config.ColorScheme) {
	switch scheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func (s *session) glamourStyle() string {
	if f, ok := s.app.stderr.(*os.File); !ok || !tui.IsTerminal(f) {
		return "notty"
	}
	switch s.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

func (s *session) runner() *pipeline.Runner {
	return pipeline.NewRunner(s.app.Backend, s.logger)
}

// pipelineOptions converts the configuration into pipeline options.
func (s *session) pipelineOptions(skipNative, dryRun bool) pipeline.Options {
	return pipeline.Options{
		Root:             s.root,
		ManifestNames:    s.cfg.ManifestNames,
		SkipNative:       skipNative,
		NativePrefix:     s.cfg.NativePrefix,
		Match:            resolve.MatchMode(s.cfg.NativeMatch),
		ChainThreshold:   s.cfg.ChainWarningThreshold,
		MaxPasses:        s.cfg.MaxPasses,
		UnmanagedPresent: s.cfg.UnmanagedPresent,
		IgnoreFile:       s.cfg.IgnoreFile,
		IgnoreMarker:     s.cfg.IgnoreMarker,
		DryRun:           dryRun,
	}
}

// openSession is newSession for command handlers: a failure is reported to
// the user and comes back as an ExitError.
func openSession(ctx context.Context, app *App, flags *rootFlagValues) (*session, error) {
	s, err := newSession(ctx, app, flags)
	if err != nil {
		fallback := &session{
			app:     app,
			cfg:     config.DefaultConfig(),
			verbose: flags.verbose,
			logger:  newLogger(app.stderr, flags.verbose),
		}
		return nil, fallback.reportError(err)
	}
	return s, nil
}
