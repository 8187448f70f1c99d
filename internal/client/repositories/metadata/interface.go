// Package metadata is a small key/value table of the client store. The
// reconciliation engine keeps its pull high-water marks here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns every pair whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	// GetInt64 returns the integer stored at key and whether it exists.
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	SetInt64(ctx context.Context, key string, v int64) error
}

// PullMarkKey names the high-water mark of a collection for a user.
func PullMarkKey(userID, collection string) string {
	return "pull_mark:" + userID + ":" + collection
}
