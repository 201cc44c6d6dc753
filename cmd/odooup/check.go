// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/diagnostic"
)

func newCheckCommand(app *App, root *rootFlagValues) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report modules referenced somewhere but defined nowhere",
		Long: `Load every module manifest under the repository root and report the
problems of the whole graph: dependencies defined nowhere, modules defined
twice and manifests that could not be read. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			diags, err := s.runner().Check(cmd.Context(), s.pipelineOptions(false, true))
			renderDiagnostics(s.app.stderr, diags, s.verbose)
			if err != nil {
				return s.reportError(err)
			}

			if diagnostic.HasErrors(diags) || (strict && hasFindings(diags)) {
				return &ExitError{Code: 1}
			}
			if !hasFindings(diags) {
				fmt.Fprintln(s.app.stdout, SuccessStyle.Render("✓ ")+"every referenced module is defined")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any finding is reported")
	return cmd
}

// hasFindings reports whether diags holds anything above debug level.
func hasFindings(diags []diagnostic.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity != diagnostic.SeverityDebug {
			return true
		}
	}
	return false
}
