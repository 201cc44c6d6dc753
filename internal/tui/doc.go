// SPDX-License-Identifier: MPL-2.0

// Package tui wraps charmbracelet/huh prompts used by the CLI. Prompts fall
// back to line-based accessible mode when the terminal cannot host a form.
package tui
