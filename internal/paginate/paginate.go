// Package paginate drives page-token iteration against a listing endpoint
// while enforcing a caller-supplied cap on the number of items returned.
package paginate

import (
	"context"
	"fmt"
)

// DefaultLimit applies when the caller does not request a cap.
const DefaultLimit = 250

// MaxPageSize is the largest page the listing endpoints honor.
const MaxPageSize = 500

// FetchFunc fetches a single page. hint is the number of items still wanted,
// capped at MaxPageSize; implementations may pass it on as the page size.
type FetchFunc[T any] func(ctx context.Context, pageToken string, hint int) (items []T, next string, err error)

// Collect accumulates pages until limit items are gathered, a page comes back
// empty, or no next-page token is returned. The final batch is truncated so
// the result never exceeds limit. limit <= 0 means DefaultLimit.
func Collect[T any](ctx context.Context, limit int, fetch FetchFunc[T]) ([]T, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := []T{}
	remaining := limit
	token := ""
	for page := 1; remaining > 0; page++ {
		items, next, err := fetch(ctx, token, min(remaining, MaxPageSize))
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(items) == 0 {
			break
		}
		if len(items) > remaining {
			items = items[:remaining]
		}
		out = append(out, items...)
		remaining -= len(items)
		if next == "" {
			break
		}
		token = next
	}
	return out, nil
}
