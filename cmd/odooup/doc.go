// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the odooup CLI commands.
//
// Command handlers parse flags, load the configuration and delegate to
// internal/app/pipeline. They own every byte written to the terminal:
// pipeline results and diagnostics come back as data and are styled here.
package cmd
