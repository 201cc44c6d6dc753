// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/app/pipeline"
	"github.com/odooup/odooup/internal/watch"
)

type whitelistFlagValues struct {
	skipNative bool
	dryRun     bool
	watch      bool
}

func newWhitelistCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &whitelistFlagValues{}

	cmd := &cobra.Command{
		Use:   "whitelist <module>",
		Short: "Whitelist a module dependency tree for sparse checkout",
		Long: `Whitelist a module and everything it transitively depends on.

Every namespace touched by the closure gets its whitelist file (a hidden
sibling of the namespace directory) and sparse checkout is enabled for its
repository. Entries are only ever appended. Auto-install modules are added
once all of their dependencies are whitelisted, then the ignore file is
regenerated past its marker line.

Nothing is written when the module, or any of its dependencies, is defined
nowhere.`,
		Example: `  odooup whitelist sale_stock
  odooup whitelist my_module --skip-native=false
  odooup whitelist my_module --dry-run
  odooup whitelist my_module --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			skipNative, err := s.resolveSkipNative(cmd.Flags().Changed("skip-native"), flags.skipNative)
			if err != nil {
				return s.reportError(err)
			}
			opts := s.pipelineOptions(skipNative, flags.dryRun)

			runErr := s.runWhitelist(cmd.Context(), args[0], opts)
			if !flags.watch {
				return runErr
			}
			var exitErr *ExitError
			if runErr != nil && errors.As(runErr, &exitErr) && errors.Is(exitErr.Err, pipeline.ErrNotARepository) {
				return runErr
			}
			return s.watchWhitelist(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&flags.skipNative, "skip-native", true, "exclude native modules from the sparse checkout configuration")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the entries that would be appended without writing anything")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run whenever a module manifest changes")
	return cmd
}

// resolveSkipNative decides --skip-native: an explicit flag wins, then an
// interactive answer when prompting is enabled, then the configured default.
func (s *session) resolveSkipNative(explicit, flagValue bool) (bool, error) {
	if explicit {
		return flagValue, nil
	}
	if !s.cfg.PromptSkipNative || !s.app.Prompter.CanPrompt() {
		return s.cfg.SkipNative, nil
	}
	answer, err := s.app.Prompter.Confirm(
		"Ignore native modules from sparse checkout config?",
		fmt.Sprintf("Namespaces under %s are left out of every whitelist.", s.cfg.NativePrefix),
		s.cfg.SkipNative,
	)
	if err != nil {
		return false, fmt.Errorf("prompt for --skip-native: %w", err)
	}
	return answer, nil
}

// runWhitelist performs one run and prints its outcome.
func (s *session) runWhitelist(ctx context.Context, target string, opts pipeline.Options) error {
	out, err := s.runner().Whitelist(ctx, target, opts)
	if out != nil {
		renderDiagnostics(s.app.stderr, out.Diagnostics, s.verbose)
	}
	if err != nil {
		return s.reportError(err)
	}
	s.printOutcome(target, out, opts.DryRun)
	return nil
}

func (s *session) watchWhitelist(ctx context.Context, target string, opts pipeline.Options) error {
	debounce, err := s.cfg.DebounceDuration()
	if err != nil {
		return s.reportError(err)
	}
	w, err := watch.New(watch.Config{
		Patterns: watch.ManifestPatterns(opts.ManifestNames),
		Debounce: debounce,
		BaseDir:  s.root,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(s.app.stdout, SubtitleStyle.Render(fmt.Sprintf("%d manifest(s) changed, re-resolving %s", len(changed), target)))
			for _, p := range changed {
				s.logger.Debug("manifest changed", "path", p)
			}
			if err := s.runWhitelist(ctx, target, opts); err != nil {
				// Already reported; keep watching so a fix gets picked up.
				s.logger.Debug("whitelist run failed", "err", err)
			}
			return nil
		},
	})
	if err != nil {
		return s.reportError(err)
	}

	fmt.Fprintln(s.app.stdout, SubtitleStyle.Render("Watching manifests under "+s.root+" (Ctrl+C to stop)"))
	if err := w.Run(ctx); err != nil {
		return s.reportError(err)
	}
	return nil
}

func (s *session) printOutcome(target string, out *pipeline.Outcome, dryRun bool) {
	w := s.app.stdout
	if dryRun {
		s.printDryRun(out)
		return
	}

	report := out.Report
	if !report.Changed() && !out.IgnoreChanged {
		fmt.Fprintln(w, SuccessStyle.Render("✓ ")+ModuleStyle.Render(target)+" is already whitelisted, nothing to do")
		return
	}

	for _, ns := range slices.Sorted(maps.Keys(report.Seeded)) {
		fmt.Fprintln(w, SuccessStyle.Render("✓ ")+ModuleStyle.Render(ns))
		fmt.Fprintln(w, sectionStyle.Render(strings.Join(report.Seeded[ns], "\n")))
	}
	if len(report.AutoInstalled) > 0 {
		fmt.Fprintf(w, "%s auto-installed %s\n", SuccessStyle.Render("✓"), ModuleStyle.Render(strings.Join(report.AutoInstalled, ", ")))
	}
	if !report.Converged {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("! stopped after %d passes before auto-install propagation settled", report.Passes)))
	}
	if out.IgnoreChanged {
		fmt.Fprintln(w, SuccessStyle.Render("✓ ")+"regenerated "+out.IgnoreFile)
	}
}

func (s *session) printDryRun(out *pipeline.Outcome) {
	w := s.app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Dry run: nothing was written"))
	if len(out.Pending) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("All whitelists are up to date"))
	}
	for _, ns := range slices.Sorted(maps.Keys(out.Pending)) {
		header := ModuleStyle.Render(ns)
		if slices.Contains(out.Created, ns) {
			header += SubtitleStyle.Render(" (new whitelist)")
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, sectionStyle.Render(strings.Join(out.Pending[ns], "\n")))
	}
	if out.IgnoreChanged {
		fmt.Fprintln(w, SubtitleStyle.Render(out.IgnoreFile+" would be regenerated"))
	}
}
