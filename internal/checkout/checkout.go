// SPDX-License-Identifier: MPL-2.0

// Package checkout talks to the version-control system hosting a namespace:
// repository detection, sparse-checkout enablement and linking a whitelist
// file into the repository's sparse-checkout configuration.
package checkout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	coreSection          = "core"
	sparseCheckoutOption = "sparseCheckout"
)

// ErrNoGitDir is returned when the repository storage is not backed by a
// directory on disk.
var ErrNoGitDir = errors.New("repository has no on-disk git directory")

type (
	// Backend is the version-control collaborator used when a namespace
	// whitelist is created. Every dir is a directory inside the repository
	// that hosts the namespace.
	Backend interface {
		// IsInsideRepository reports whether dir belongs to a git work tree.
		IsInsideRepository(dir string) (bool, error)
		// IsSparseCheckoutEnabled reports whether core.sparseCheckout is true.
		IsSparseCheckoutEnabled(dir string) (bool, error)
		// EnableSparseCheckout sets core.sparseCheckout to true.
		EnableSparseCheckout(dir string) error
		// GitDir returns the git directory of the repository containing dir.
		GitDir(dir string) (string, error)
		// Symlink creates link pointing at target. An existing link is left alone.
		Symlink(target, link string) error
	}

	// GitBackend implements Backend on top of go-git, so no git binary is needed.
	GitBackend struct{}
)

// NewGitBackend creates a GitBackend.
func NewGitBackend() *GitBackend {
	return &GitBackend{}
}

// IsInsideRepository implements Backend.
func (b *GitBackend) IsInsideRepository(dir string) (bool, error) {
	_, err := open(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsSparseCheckoutEnabled implements Backend.
func (b *GitBackend) IsSparseCheckoutEnabled(dir string) (bool, error) {
	repo, err := open(dir)
	if err != nil {
		return false, err
	}
	cfg, err := repo.Config()
	if err != nil {
		return false, fmt.Errorf("read git config for %s: %w", dir, err)
	}
	return parseGitBool(cfg.Raw.Section(coreSection).Option(sparseCheckoutOption)), nil
}

// EnableSparseCheckout implements Backend.
func (b *GitBackend) EnableSparseCheckout(dir string) error {
	repo, err := open(dir)
	if err != nil {
		return err
	}
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read git config for %s: %w", dir, err)
	}
	cfg.Raw.Section(coreSection).SetOption(sparseCheckoutOption, "true")
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("enable sparse checkout for %s: %w", dir, err)
	}
	return nil
}

// GitDir implements Backend.
func (b *GitBackend) GitDir(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	fs, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", fmt.Errorf("%s: %w", dir, ErrNoGitDir)
	}
	return fs.Filesystem().Root(), nil
}

// Symlink implements Backend.
func (b *GitBackend) Symlink(target, link string) error {
	if _, err := os.Lstat(link); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(link), err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("link %s to %s: %w", link, target, err)
	}
	return nil
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	return repo, nil
}

// parseGitBool follows git's boolean config syntax.
func parseGitBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
