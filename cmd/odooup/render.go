// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/odooup/odooup/internal/app/pipeline"
	"github.com/odooup/odooup/internal/dag"
	"github.com/odooup/odooup/internal/diagnostic"
	"github.com/odooup/odooup/internal/issue"
	"github.com/odooup/odooup/internal/modgraph"
	"github.com/odooup/odooup/internal/resolve"
)

// issueFor maps a run error to its catalog entry. Zero means no entry applies.
func issueFor(err error) issue.Id {
	if id, ok := issue.IssueOf(err); ok {
		return id
	}

	var cycleErr *dag.CycleError
	var ignoreErr *pipeline.IgnoreFileError
	switch {
	case errors.Is(err, pipeline.ErrNotARepository):
		return issue.NotARepositoryId
	case errors.Is(err, resolve.ErrUnknownTarget):
		return issue.ModuleNotFoundId
	case errors.Is(err, resolve.ErrUndefinedTarget):
		return issue.ModuleUndefinedId
	case errors.Is(err, resolve.ErrMissingDependency):
		return issue.MissingDependencyId
	case errors.Is(err, resolve.ErrNativeModuleExcluded):
		return issue.NativeModuleExcludedId
	case errors.As(err, &cycleErr):
		return issue.DependencyCycleId
	case errors.As(err, &ignoreErr) && errors.Is(err, fs.ErrNotExist):
		return issue.IgnoreFileNotFoundId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, modgraph.ErrUnsupportedManifest):
		return issue.ManifestLoadFailedId
	default:
		return 0
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors carry their suggestions; verbose mode adds the cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportError prints err with its catalog entry and returns the ExitError
// that makes the process exit non-zero.
func (s *session) reportError(err error) error {
	fmt.Fprintln(s.app.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, s.verbose))

	if id := issueFor(err); id != 0 {
		if entry := issue.Get(id); entry != nil {
			rendered, renderErr := entry.Render(s.glamourStyle())
			if renderErr != nil {
				s.logger.Warn("failed to render issue catalog entry", "issue", id, "err", renderErr)
			} else {
				fmt.Fprint(s.app.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: 1, Err: err}
}

// renderDiagnostics prints diags to w, most severe first. Debug findings are
// only shown in verbose mode.
func renderDiagnostics(w io.Writer, diags []diagnostic.Diagnostic, verbose bool) {
	for _, sev := range []diagnostic.Severity{
		diagnostic.SeverityError,
		diagnostic.SeverityWarning,
		diagnostic.SeverityInfo,
		diagnostic.SeverityDebug,
	} {
		if sev == diagnostic.SeverityDebug && !verbose {
			continue
		}
		for _, d := range diags {
			if d.Severity != sev {
				continue
			}
			fmt.Fprintln(w, formatDiagnostic(d))
			if len(d.Chain) > 0 {
				fmt.Fprintln(w, sectionStyle.Render(ModuleStyle.Render(strings.Join(d.Chain, " > "))))
			}
			if verbose && d.Path != "" {
				fmt.Fprintln(w, sectionStyle.Render(VerboseStyle.Render(d.Path)))
			}
		}
	}
}

func formatDiagnostic(d diagnostic.Diagnostic) string {
	switch d.Severity {
	case diagnostic.SeverityError:
		return ErrorStyle.Render("✗ ") + d.Message
	case diagnostic.SeverityWarning:
		return WarningStyle.Render("! ") + d.Message
	case diagnostic.SeverityDebug:
		return VerboseStyle.Render("· " + d.Message)
	default:
		return SubtitleStyle.Render("• ") + d.Message
	}
}
