// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "odooup",
		Short: "Sparse-checkout whitelists for namespaced module repositories",
		Long: TitleStyle.Render("odooup") + SubtitleStyle.Render(" - sparse-checkout whitelists for module repositories") + `

odooup resolves the dependency closure of a module and records it in the
whitelist file of every namespace involved, so git's sparse checkout only
materializes what the module needs. Auto-install modules follow as soon as
all of their dependencies are whitelisted, and the ignore file fragment is
regenerated from the resulting state.

` + SubtitleStyle.Render("Examples:") + `
  odooup whitelist sale_stock              Whitelist sale_stock and its dependencies
  odooup whitelist my_module --dry-run     Show what would be appended
  odooup check                             Report modules referenced but defined nowhere
  odooup config show                       Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <user config dir>/odooup/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.root, "root", "C", ".", "repository root holding the module namespaces")

	rootCmd.AddCommand(
		newWhitelistCommand(app, flags),
		newCheckCommand(app, flags),
		newIgnoreCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
