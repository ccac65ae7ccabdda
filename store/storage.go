package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/crawler/levels"
)

var (
	ErrNotFound    = errors.New("store: level not found")
	ErrReadOnly    = errors.New("store: read-only")
	ErrInvalidName = errors.New("store: invalid level name")
)

// Storage defines where levels are kept between sessions.
type Storage interface {
	SaveLevel(ctx context.Context, name string, level *levels.Level) error
	LoadLevel(ctx context.Context, name string) (*levels.Level, error)
	ListLevels(ctx context.Context) ([]string, error)
	DeleteLevel(ctx context.Context, name string) error
	Close() error
}

// Open picks a backend from uri: a postgres:// or postgresql:// DSN, a
// directory path, or "" for the levels bundled with the binary.
func Open(ctx context.Context, uri string) (Storage, error) {
	switch {
	case uri == "":
		return NewBundledStore(), nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresStore(ctx, uri, DefaultTable)
	default:
		return NewFileStore(uri)
	}
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// BundledStore serves the levels embedded in the levels package.
type BundledStore struct{}

func NewBundledStore() *BundledStore {
	return &BundledStore{}
}

func (BundledStore) SaveLevel(ctx context.Context, name string, level *levels.Level) error {
	return ErrReadOnly
}

func (BundledStore) LoadLevel(ctx context.Context, name string) (*levels.Level, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	for _, bundled := range levels.BundledLevels() {
		if bundled == strings.TrimSuffix(name, ".yaml") {
			return levels.LoadLevelFromFS(bundled)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (BundledStore) ListLevels(ctx context.Context) ([]string, error) {
	return levels.BundledLevels(), nil
}

func (BundledStore) DeleteLevel(ctx context.Context, name string) error {
	return ErrReadOnly
}

func (BundledStore) Close() error {
	return nil
}
