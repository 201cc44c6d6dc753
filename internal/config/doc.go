// SPDX-License-Identifier: MPL-2.0

// Package config loads odooup settings using Viper with CUE as the file format.
//
// The file is looked up at the --config path, then at config.cue under the
// odooup directory of os.UserConfigDir, then at ./odooup.cue. Files are
// validated against the embedded #Config schema before being merged over the
// defaults; ODOOUP_* environment variables override both.
package config
