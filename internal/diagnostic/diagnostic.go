// SPDX-License-Identifier: MPL-2.0

// Package diagnostic defines the structured, non-fatal findings produced while
// building and resolving the module graph. Diagnostics are returned to callers
// as data; only the CLI layer decides how to render them.
package diagnostic

import "fmt"

const (
	// SeverityDebug marks findings only shown in verbose mode.
	SeverityDebug Severity = "debug"
	// SeverityInfo marks informational findings.
	SeverityInfo Severity = "info"
	// SeverityWarning indicates a recoverable problem.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a problem that aborts the run when it concerns the target closure.
	SeverityError Severity = "error"

	// CodeDependencyNotFound marks a module referenced somewhere but defined nowhere.
	CodeDependencyNotFound Code = "dependency_not_found"
	// CodeMissingDependency marks an undefined module inside the target closure.
	CodeMissingDependency Code = "missing_dependency"
	// CodeLongChain marks a dependency chain longer than the configured threshold.
	CodeLongChain Code = "long_dependency_chain"
	// CodeDuplicateModule marks a module defined by more than one manifest.
	CodeDuplicateModule Code = "duplicate_module"
	// CodeNotInstallable marks a manifest skipped because it is not installable.
	CodeNotInstallable Code = "module_not_installable"
	// CodeManifestSkipped marks a manifest that could not be decoded.
	CodeManifestSkipped Code = "manifest_skipped"
	// CodeReservedName marks a module whose directory name Windows reserves.
	CodeReservedName Code = "reserved_name"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Code is a machine-readable diagnostic identifier.
	Code string

	// Diagnostic represents one structured finding.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "dependency_not_found").
		Code Code
		// Message is the human-readable description.
		Message string
		// Module is the module the finding is about (optional).
		Module string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Chain is an ordered module sequence, set for long-chain warnings.
		Chain []string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// New creates a diagnostic with a formatted message.
func New(severity Severity, code Code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithModule returns a copy of d bound to module.
func (d Diagnostic) WithModule(module string) Diagnostic {
	d.Module = module
	return d
}

// WithPath returns a copy of d bound to path.
func (d Diagnostic) WithPath(path string) Diagnostic {
	d.Path = path
	return d
}

// HasErrors reports whether any diagnostic has SeverityError.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
