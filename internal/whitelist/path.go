// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotWhitelistFile is returned by NamespaceFromPath for paths that do not
// follow the hidden-sibling convention.
var ErrNotWhitelistFile = errors.New("not a whitelist file")

// FilePath returns the whitelist file of namespace ns under root.
func FilePath(root, ns string) string {
	dir, base := path.Split(path.Clean(ns))
	return filepath.Join(root, filepath.FromSlash(dir), "."+base)
}

// NamespaceFromPath is the inverse of FilePath: it returns the namespace whose
// whitelist is stored in file.
func NamespaceFromPath(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside %s: %w", file, root, ErrNotWhitelistFile)
	}

	dir, base := path.Split(rel)
	name, hidden := strings.CutPrefix(base, ".")
	if !hidden || name == "" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%s: %w", file, ErrNotWhitelistFile)
	}
	return dir + name, nil
}
