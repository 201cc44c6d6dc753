// SPDX-License-Identifier: MPL-2.0

// Package ignorefrag regenerates the part of an ignore file that mirrors the
// namespace whitelists. Everything up to and including the marker line is
// kept; everything after it is replaced on every run.
package ignorefrag

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/odooup/odooup/internal/whitelist"
)

const (
	// DefaultMarker separates hand-written content from the generated fragment.
	DefaultMarker = "# Autogenerated file content from here ... DO NOT MODIFY"

	// DefaultFile is the ignore file regenerated when none is configured.
	DefaultFile = ".dockerignore"

	setupDir = "!setup"
)

// Fragment renders the generated lines for namespaces: for each namespace, in
// name order, an exclusion of the whole namespace followed by one negation per
// whitelisted module, then the namespace's own patterns re-rooted under it.
// Setup exclusions produce no line.
func Fragment(namespaces []whitelist.Namespace) string {
	sorted := slices.Clone(namespaces)
	slices.SortFunc(sorted, func(a, b whitelist.Namespace) int { return strings.Compare(a.Name, b.Name) })

	var b strings.Builder
	for _, ns := range sorted {
		root := strings.TrimSuffix(ns.Name, "/")
		fmt.Fprintf(&b, "%s/**\n", root)
		for _, m := range ns.Entries.Modules() {
			fmt.Fprintf(&b, "!%s/%s\n", root, m)
		}
		for _, p := range ns.Entries.Patterns() {
			if isSetupExclusion(p) {
				continue
			}
			fmt.Fprintf(&b, "%s/%s\n", root, strings.TrimPrefix(p, "!"))
		}
	}
	return b.String()
}

// isSetupExclusion reports whether p excludes the module-level setup
// directory. Only the first path segment is compared, so "!setup_tools/**" or
// "!static/setup/**" are ordinary patterns.
func isSetupExclusion(p string) bool {
	return p == setupDir || strings.HasPrefix(p, setupDir+"/")
}

// Splice returns content with everything after the first line containing
// marker replaced by fragment. A missing marker line is appended first.
func Splice(content []byte, marker, fragment string) []byte {
	var out bytes.Buffer
	rest := content
	found := false
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
		}
		rest = rest[len(line):]
		out.Write(line)
		if bytes.Contains(line, []byte(marker)) {
			found = true
			if line[len(line)-1] != '\n' {
				out.WriteByte('\n')
			}
			break
		}
	}

	if !found {
		if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
			out.WriteByte('\n')
		}
		out.WriteString(marker)
		out.WriteByte('\n')
	}
	out.WriteString(fragment)
	return out.Bytes()
}

// Render returns the content the ignore file at path would have after
// regeneration, and whether it differs from the current content. The file
// must exist.
func Render(path, marker string, namespaces []whitelist.Namespace) (updated []byte, changed bool, err error) {
	if marker == "" {
		marker = DefaultMarker
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read ignore file: %w", err)
	}
	updated = Splice(content, marker, Fragment(namespaces))
	return updated, !bytes.Equal(updated, content), nil
}

// Regenerate rewrites the ignore file at path so that its generated part
// reflects namespaces. It is replaced through a rename, so readers never
// observe a partial write, and left untouched when already current.
func Regenerate(path, marker string, namespaces []whitelist.Namespace) (changed bool, err error) {
	updated, changed, err := Render(path, marker, namespaces)
	if err != nil || !changed {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat ignore file: %w", err)
	}
	if err := writeAtomic(path, updated, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace ignore file: %w", err)
	}
	return nil
}
