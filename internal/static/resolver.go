// Package static maps requested URL paths to content-store keys: default
// document, traversal defense, existence check, and content-type
// selection.
package static

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/slabounty/rusty-server/internal/protocol/http1"
	"github.com/slabounty/rusty-server/pkg/content"
)

const (
	// DefaultIndexDocument is served for the root path.
	DefaultIndexDocument = "index.html"

	// DefaultNotFoundDocument is the crafted 404 body looked up under the
	// static root.
	DefaultNotFoundDocument = "404.html"
)

// Target is a successfully resolved request: the store key to read and
// the content type to serve it with.
type Target struct {
	Key         string
	ContentType string
}

// Resolver turns URL paths into store keys. All filesystem knowledge is
// behind the injected content.Store, so resolution is testable against
// the memory store.
type Resolver struct {
	store    content.Store
	index    string
	notFound string
}

// NewResolver creates a resolver over store. Empty index/notFound fall
// back to the defaults.
func NewResolver(store content.Store, index, notFound string) *Resolver {
	if index == "" {
		index = DefaultIndexDocument
	}
	if notFound == "" {
		notFound = DefaultNotFoundDocument
	}
	return &Resolver{
		store:    store,
		index:    index,
		notFound: notFound,
	}
}

// NotFoundDocument returns the store key of the crafted 404 body.
func (r *Resolver) NotFoundDocument() string {
	return r.notFound
}

// Resolve maps a URL path to a Target. The root path maps to the index
// document; any other path is the literal concatenation under the root.
// Paths whose ".." segments would climb above the root, and paths whose
// target does not exist as regular content, yield an error wrapping
// content.ErrContentNotFound. Resolution is idempotent for an unchanged
// store.
func (r *Resolver) Resolve(ctx context.Context, urlPath string) (*Target, error) {
	key, ok := storeKey(urlPath, r.index)
	if !ok {
		return nil, fmt.Errorf("path %s escapes static root: %w", urlPath, content.ErrContentNotFound)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("existence check for %s: %w", key, err)
	}
	if !exists {
		return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
	}

	return &Target{
		Key:         key,
		ContentType: http1.ResolveMIME(path.Ext(key)),
	}, nil
}

// storeKey normalizes a URL path into a root-relative store key. It
// reports false when the path walks above the root or normalizes to
// the root directory itself.
func storeKey(urlPath, index string) (string, bool) {
	if urlPath == "/" {
		return index, true
	}

	// Track directory depth segment by segment: a ".." that pops an empty
	// stack escapes the root.
	segments := strings.Split(strings.TrimLeft(urlPath, "/"), "/")
	depth := 0
	for _, seg := range segments {
		switch seg {
		case "", ".":
			// Skipped by path.Clean below.
		case "..":
			depth--
			if depth < 0 {
				return "", false
			}
		default:
			depth++
		}
	}

	// Paths like "/a/.." or "/." clean to the root directory itself,
	// which is not servable content. Only "/" maps to the index document.
	key := path.Clean(strings.TrimLeft(urlPath, "/"))
	if key == "." || key == "" {
		return "", false
	}
	return key, true
}

// Read fetches content bytes for a resolved key.
func (r *Resolver) Read(ctx context.Context, key string) ([]byte, error) {
	return r.store.Read(ctx, key)
}
