// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIgnoreCommand(app *App, root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "ignore",
		Short: "Regenerate the ignore file fragment from the current whitelists",
		Long: `Rewrite everything after the marker line of the ignore file from the
whitelists currently on disk, without resolving any module. Content up to
and including the marker line is kept as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			opts := s.pipelineOptions(false, false)
			changed, err := s.runner().Ignore(cmd.Context(), opts)
			if err != nil {
				return s.reportError(err)
			}
			if changed {
				fmt.Fprintln(s.app.stdout, SuccessStyle.Render("✓ ")+"regenerated "+opts.IgnorePath())
			} else {
				fmt.Fprintln(s.app.stdout, SubtitleStyle.Render(opts.IgnorePath()+" is up to date"))
			}
			return nil
		},
	}
}
