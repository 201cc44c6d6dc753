// SPDX-License-Identifier: MPL-2.0

// Package whitelist persists the per-namespace sparse-checkout whitelists.
//
// A namespace is a directory, relative to the repository root, that holds
// module directories. Its whitelist lives in a hidden sibling file: namespace
// "vendor/oca/web" is stored in "vendor/oca/.web". The file holds one entry
// per line, either a bare module name or a "!"-prefixed glob pattern. Files
// are created lazily and only ever grow by appending missing entries.
package whitelist
