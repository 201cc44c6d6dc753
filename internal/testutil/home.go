// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetConfigHome points os.UserConfigDir at dir and returns a cleanup function
// restoring the previous environment. The resulting config directory is
// ConfigHome(dir).
//
// Platform handling:
//   - Windows: Sets APPDATA
//   - macOS: Sets HOME (config lives in Library/Application Support)
//   - Others: Sets XDG_CONFIG_HOME
func SetConfigHome(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "APPDATA", dir)
	case "darwin":
		return MustSetenv(t, "HOME", dir)
	default:
		return MustSetenv(t, "XDG_CONFIG_HOME", dir)
	}
}

// ConfigHome returns the directory os.UserConfigDir reports after
// SetConfigHome(t, dir).
func ConfigHome(dir string) string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(dir, "Library", "Application Support")
	}
	return dir
}
