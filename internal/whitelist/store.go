// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/odooup/odooup/internal/checkout"
)

// ErrNotInitialized is returned by Read for a namespace without a whitelist.
var ErrNotInitialized = errors.New("whitelist not initialized")

type (
	// Store persists one whitelist Set per namespace.
	Store interface {
		// Exists reports whether ns has a persisted whitelist.
		Exists(ns string) (bool, error)
		// Read returns the whitelist of ns, or ErrNotInitialized.
		Read(ns string) (Set, error)
		// EnsureInitialized creates an empty whitelist for ns, performing the
		// one-time checkout setup. It is a no-op when the whitelist exists.
		EnsureInitialized(ns string) error
		// AppendMissing appends the entries of required that ns lacks and
		// returns them, sorted. Nothing is written when none are missing.
		AppendMissing(ns string, required Set) ([]string, error)
	}

	// Namespace pairs a namespace with its whitelist.
	Namespace struct {
		Name    string
		Entries Set
	}

	// FileStore is the on-disk Store rooted at a repository directory.
	FileStore struct {
		root    string
		backend checkout.Backend
		logger  *log.Logger
	}
)

// NewFileStore creates a FileStore for the repository at root. A nil logger
// disables logging.
func NewFileStore(root string, backend checkout.Backend, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileStore{root: root, backend: backend, logger: logger}
}

// Root returns the repository root.
func (s *FileStore) Root() string {
	return s.root
}

// Exists implements Store.
func (s *FileStore) Exists(ns string) (bool, error) {
	_, err := os.Stat(FilePath(s.root, ns))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat whitelist of %s: %w", ns, err)
	}
	return true, nil
}

// Read implements Store.
func (s *FileStore) Read(ns string) (Set, error) {
	data, err := s.readRaw(ns)
	if err != nil {
		return nil, err
	}
	return parse(data), nil
}

// EnsureInitialized implements Store. The checkout setup runs before the file
// is created, so a failed setup is retried by the next run.
func (s *FileStore) EnsureInitialized(ns string) error {
	exists, err := s.Exists(ns)
	if err != nil || exists {
		return err
	}

	file := FilePath(s.root, ns)
	nsDir := filepath.Join(s.root, filepath.FromSlash(ns))
	if err := s.setupCheckout(nsDir, file); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create whitelist directory for %s: %w", ns, err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("create whitelist of %s: %w", ns, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create whitelist of %s: %w", ns, err)
	}
	s.logger.Debug("created whitelist", "namespace", ns, "file", file)
	return nil
}

// AppendMissing implements Store.
func (s *FileStore) AppendMissing(ns string, required Set) ([]string, error) {
	data, err := s.readRaw(ns)
	if err != nil {
		return nil, err
	}
	missing := required.Difference(parse(data)).Sorted()
	if len(missing) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if len(data) > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Join(missing, "\n"))
	buf.WriteByte('\n')

	f, err := os.OpenFile(FilePath(s.root, ns), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open whitelist of %s: %w", ns, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("append to whitelist of %s: %w", ns, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("append to whitelist of %s: %w", ns, err)
	}

	s.logger.Debug("appended whitelist entries", "namespace", ns, "entries", missing)
	return missing, nil
}

// Files returns the whitelist files of namespaces that exist on disk, in the
// order given.
func (s *FileStore) Files(namespaces []string) ([]string, error) {
	var files []string
	for _, ns := range namespaces {
		ok, err := s.Exists(ns)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, FilePath(s.root, ns))
		}
	}
	return files, nil
}

// ReadFiles reads whitelist files under root, naming each by the namespace
// its path stands for.
func ReadFiles(root string, files []string) ([]Namespace, error) {
	out := make([]Namespace, 0, len(files))
	for _, file := range files {
		ns, err := NamespaceFromPath(root, file)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read whitelist of %s: %w", ns, err)
		}
		out = append(out, Namespace{Name: ns, Entries: parse(data)})
	}
	return out, nil
}

func (s *FileStore) readRaw(ns string) ([]byte, error) {
	data, err := os.ReadFile(FilePath(s.root, ns))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ns, ErrNotInitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("read whitelist of %s: %w", ns, err)
	}
	return data, nil
}

// setupCheckout enables sparse checkout for the repository hosting nsDir and
// links file as its sparse-checkout definition. A link that cannot be created
// is logged, not fatal: the whitelist stays usable by hand.
func (s *FileStore) setupCheckout(nsDir, file string) error {
	enabled, err := s.backend.IsSparseCheckoutEnabled(nsDir)
	if err != nil {
		return fmt.Errorf("check sparse checkout: %w", err)
	}
	if !enabled {
		if err := s.backend.EnableSparseCheckout(nsDir); err != nil {
			return err
		}
		s.logger.Debug("enabled sparse checkout", "dir", nsDir)
	}

	gitDir, err := s.backend.GitDir(nsDir)
	if err != nil {
		return fmt.Errorf("locate git directory: %w", err)
	}
	link := filepath.Join(gitDir, "info", "sparse-checkout")
	if err := s.backend.Symlink(file, link); err != nil {
		s.logger.Warn("could not link sparse-checkout file", "link", link, "err", err)
	}
	return nil
}

// Collect returns the persisted whitelists among namespaces, in the order given.
func Collect(s Store, namespaces []string) ([]Namespace, error) {
	var out []Namespace
	for _, ns := range namespaces {
		set, err := s.Read(ns)
		if errors.Is(err, ErrNotInitialized) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Namespace{Name: ns, Entries: set})
	}
	return out, nil
}
