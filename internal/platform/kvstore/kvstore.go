// Package kvstore provides the portal's persistent key-value storage:
// JSON-encoded values under fixed string keys. An absent key means
// "not yet initialized", not an error. Writers race last-write-wins,
// which is acceptable for the demo-quality data stored here.
package kvstore

import "context"

// Store is the key-value storage contract. Get decodes the stored JSON
// into out and reports whether the key existed; corrupted JSON is
// returned as an error the caller surfaces as a non-fatal notice.
type Store interface {
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}
