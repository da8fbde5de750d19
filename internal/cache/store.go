package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/tilemarch/internal/utils"
)

var (
	// ErrCacheMiss is returned by Load when no cache file exists.
	ErrCacheMiss = errors.New("cache file not found")

	errMissingComma = errors.New("missing ',' between coordinates")
)

// Store reads and writes a single cache file.
type Store struct {
	path string
}

// NewStore returns a store for path. An empty path yields a disabled store.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Enabled reports whether the store has a location to work with.
func (s *Store) Enabled() bool { return s != nil && s.path != "" }

// Load reads the cached polygons. A missing file yields ErrCacheMiss.
func (s *Store) Load() ([][]utils.IPoint, error) {
	if !s.Enabled() {
		return nil, ErrCacheMiss
	}
	f, err := os.Open(s.path) //nolint:gosec // G304: cache location is chosen by the caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, s.path)
		}
		return nil, fmt.Errorf("open cache %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	polys, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", s.path, err)
	}
	return polys, nil
}

// Save writes polygons to a temporary file next to the target and renames it
// into place, so a concurrent reader sees either the old or the new file.
func (s *Store) Save(polygons [][]utils.IPoint) error {
	if !s.Enabled() {
		return nil
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := Encode(tmp, polygons); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("install cache %s: %w", s.path, err)
	}
	return nil
}

// Remove deletes the cache file. A missing file is not an error.
func (s *Store) Remove() error {
	if !s.Enabled() {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache %s: %w", s.path, err)
	}
	return nil
}
