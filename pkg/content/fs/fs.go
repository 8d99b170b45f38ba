// Package fs implements a content store over a local directory tree.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slabounty/rusty-server/pkg/content"
)

// FSStore serves content from a directory on the local filesystem. The
// directory is treated as read-only for the lifetime of the server; no
// locking is performed around reads.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at root. The directory must already
// exist; a missing or non-directory root is a startup error.
func NewFSStore(ctx context.Context, root string) (*FSStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("static root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static root %q is not a directory", root)
	}

	return &FSStore{root: root}, nil
}

// Root returns the directory this store serves from.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Exists reports whether key refers to a regular file under the root.
// Directories and special files are reported as absent so they resolve
// to the not-found document rather than a read error.
func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat content %s: %w", key, err)
	}

	return info.Mode().IsRegular(), nil
}

// Read returns the whole file for key.
func (s *FSStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to read content %s: %w", key, err)
	}

	return data, nil
}
