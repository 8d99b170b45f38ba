// Package content defines the store abstraction the server reads static
// documents through. A store maps root-relative keys (e.g.
// "css/site.css") to byte content; implementations back the static root
// with the local filesystem, memory, or an S3 bucket.
package content

import (
	"context"
	"errors"
)

// ErrContentNotFound indicates the requested key does not exist in the
// store, or does not refer to a regular file.
//
// Implementations wrap it with context:
//
//	return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
//
// Handlers check it with errors.Is and map it to 404; any other store
// error maps to 500.
var ErrContentNotFound = errors.New("content not found")

// Store is the read-only file-access capability injected into the path
// resolver and connection handlers. It is the only I/O the resolution
// pipeline performs.
//
// Implementations must be safe for concurrent use: handlers on separate
// connections read the same keys simultaneously with no coordination.
type Store interface {
	// Exists reports whether key refers to readable regular content.
	// It returns an error only for store failures, not for absence.
	Exists(ctx context.Context, key string) (bool, error)

	// Read returns the full content for key. A missing key yields an
	// error wrapping ErrContentNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
}
