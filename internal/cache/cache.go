package cache

import "context"

// Cache is a key-value store of serialized query results. Entries have no
// TTL; staleness is bounded entirely by explicit invalidation.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, val []byte) error
	Has(ctx context.Context, key Key) (bool, error)
	Delete(ctx context.Context, keys ...Key) error
}
