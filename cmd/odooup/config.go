// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/config"
)

// newConfigCommand creates the `odooup config` command tree.
func newConfigCommand(app *App, root *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage odooup configuration",
		Long: `Manage odooup configuration.

Configuration is read from the first file found in:
  1. the file given with --config
  2. the user config file:
     - Linux: ~/.config/odooup/config.cue
     - macOS: ~/Library/Application Support/odooup/config.cue
     - Windows: %APPDATA%\odooup\config.cue
  3. odooup.cue in the repository root

Environment variables prefixed with ODOOUP_ override file values,
e.g. ODOOUP_SKIP_NATIVE=false.

Modules are discovered through manifest_names, which defaults to
__manifest__.cue and __manifest__.toml. Odoo's __manifest__.py is not
evaluated; convert each manifest to one of those formats, e.g.

  manifest_names: ["__manifest__.toml"]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			s.showConfig()
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(force)
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName))
			return nil
		},
	})

	return cfgCmd
}

func (s *session) showConfig() {
	w := s.app.stdout
	keyStyle := ModuleStyle
	valueStyle := SuccessStyle
	show := func(key string, value any) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if s.cfgPath != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), s.cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	cfg := s.cfg
	show("native_prefix", cfg.NativePrefix)
	show("native_match", cfg.NativeMatch)
	show("skip_native", cfg.SkipNative)
	show("prompt_skip_native", cfg.PromptSkipNative)
	show("ignore_file", cfg.IgnoreFile)
	show("ignore_marker", cfg.IgnoreMarker)
	show("chain_warning_threshold", cfg.ChainWarningThreshold)
	show("max_passes", cfg.MaxPasses)
	show("unmanaged_present", cfg.UnmanagedPresent)
	show("manifest_names", strings.Join(cfg.ManifestNames, ", "))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
}
