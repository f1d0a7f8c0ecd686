// Package gtasks provides a Google Tasks client abstracted behind
// interfaces for testability. The core pipeline only needs three
// operations: fetch open titles, mark titles complete, and move titles
// between lists. All title matching is case-insensitive exact.
package gtasks

import (
	"context"
)

// Source defines the task-list operations the pipeline consumes.
type Source interface {
	// FetchOpenTitles returns the titles of all open tasks in the
	// named list, in list order, blank titles dropped.
	FetchOpenTitles(ctx context.Context, listName string) ([]string, error)

	// MarkComplete completes every open task whose title matches one
	// of titles (case-insensitive) and returns how many it completed.
	MarkComplete(ctx context.Context, listName string, titles []string) (int, error)

	// Move re-creates matching open tasks in dstList and deletes the
	// originals from srcList, returning how many moved. Google Tasks
	// has no native cross-list move.
	Move(ctx context.Context, srcList, dstList string, titles []string) (int, error)
}

// TokenProvider defines the interface for obtaining OAuth2 access tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
