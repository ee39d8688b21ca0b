package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// Storage keeps quote snapshots as files under root. Snapshots are
// write-once and appear atomically: readers never see a partial file.
type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	if strings.TrimSpace(root) == "" {
		root = "./data/quotes"
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create snapshot root: %w", err)
	}
	return &Storage{root: root}, nil
}

// Save writes data to a temporary file next to the target and links it into
// place. The link fails if the key exists, which keeps snapshots immutable.
func (s *Storage) Save(ctx context.Context, key string, data io.Reader) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeAll(ctx, tmp, data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}

	if err := os.Link(tmp.Name(), target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.WrapError(domain.ErrInvalidInput, "save snapshot", fmt.Errorf("snapshot %s already exists", key))
		}
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func writeAll(ctx context.Context, f *os.File, data io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, domain.WrapError(domain.ErrNotFound, "open snapshot", err)
	case err != nil:
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return f, nil
}

// path maps a slash-separated key below root, refusing keys that would escape it.
func (s *Storage) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || !fs.ValidPath(key) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve snapshot key", fmt.Errorf("invalid key %q", key))
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
