package store

import (
	"context"

	"github.com/dmitrymomot/onair/pkg/tree"
)

// Store is the persistent source of translation trees.
// Implementations must be safe for concurrent reads. The lookup core never
// writes through this interface.
type Store interface {
	// FetchTree returns the full tree of a locale.
	// Returns ErrNotFound when the locale has no record.
	FetchTree(ctx context.Context, locale string) (tree.Tree, error)

	// FetchKey resolves a single dotted path directly in the store.
	// found is false when the locale or the path does not exist.
	FetchKey(ctx context.Context, locale, path string) (value any, found bool, err error)

	// ListLocales returns every stored locale in ascending order.
	ListLocales(ctx context.Context) ([]string, error)
}
