package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/milk9111/crawler/levels"
)

// FileStore keeps one YAML document per level in a directory.
type FileStore struct {
	dir   string
	mutex sync.RWMutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, strings.TrimSuffix(name, ".yaml")+".yaml")
}

// SaveLevel writes through a temporary file so a crash never leaves a
// truncated level behind.
func (s *FileStore) SaveLevel(ctx context.Context, name string, level *levels.Level) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := levels.Marshal(level)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".level-*")
	if err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) LoadLevel(ctx context.Context, name string) (*levels.Level, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	l, err := levels.LoadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, err)
	}
	return l, nil
}

func (s *FileStore) ListLevels(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) DeleteLevel(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
