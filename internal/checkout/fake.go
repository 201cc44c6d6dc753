// SPDX-License-Identifier: MPL-2.0

package checkout

import (
	"maps"
	"path/filepath"
	"strings"
	"sync"
)

// FakeBackend is an in-memory Backend for tests. Every directory below Root
// is inside the repository; its git directory is Root/.git.
type FakeBackend struct {
	Root string

	mu       sync.Mutex
	sparse   bool
	enables  int
	symlinks map[string]string
}

// NewFakeBackend creates a FakeBackend rooted at root.
func NewFakeBackend(root string) *FakeBackend {
	return &FakeBackend{Root: root, symlinks: make(map[string]string)}
}

// IsInsideRepository implements Backend.
func (f *FakeBackend) IsInsideRepository(dir string) (bool, error) {
	rel, err := filepath.Rel(f.Root, dir)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// IsSparseCheckoutEnabled implements Backend.
func (f *FakeBackend) IsSparseCheckoutEnabled(string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sparse, nil
}

// EnableSparseCheckout implements Backend.
func (f *FakeBackend) EnableSparseCheckout(string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sparse = true
	f.enables++
	return nil
}

// GitDir implements Backend.
func (f *FakeBackend) GitDir(string) (string, error) {
	return filepath.Join(f.Root, ".git"), nil
}

// Symlink implements Backend by recording the link.
func (f *FakeBackend) Symlink(target, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.symlinks[link]; !exists {
		f.symlinks[link] = target
	}
	return nil
}

// Enables returns how many times EnableSparseCheckout was called.
func (f *FakeBackend) Enables() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enables
}

// Symlinks returns a copy of the recorded link → target map.
func (f *FakeBackend) Symlinks() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.symlinks)
}
