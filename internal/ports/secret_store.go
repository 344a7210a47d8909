package ports

import "context"

// SecretStore holds credentials that must not live in config.toml, such as
// the remote store key.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
