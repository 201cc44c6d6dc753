// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs one whitelist resolution end to end: load the module
// graph, resolve the target's closure, reconcile the namespace whitelists and
// regenerate the ignore fragment. It decouples the CLI from the domain
// packages and returns diagnostics as data.
package pipeline
