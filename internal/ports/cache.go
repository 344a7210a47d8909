package ports

import "context"

// Cache is the durable key/value store local to this device. Get returns
// domain.ErrCacheMiss when the key has never been written.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
