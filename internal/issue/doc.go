// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing error layer: ActionableError carries
// operation context and suggestions, and the Markdown catalog explains the
// failures odooup knows how to recover from.
package issue
