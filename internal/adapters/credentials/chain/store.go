// Package chain looks credentials up across an ordered list of stores.
package chain

import (
	"context"
	"errors"
	"fmt"

	filecache "github.com/Subha2009/kamun-software/internal/adapters/cache/file"
	passstore "github.com/Subha2009/kamun-software/internal/adapters/credentials/pass"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

// Store reads from the first store that holds a key and writes to the first
// store that accepts it. A key no store holds is a domain.ErrCacheMiss.
type Store struct {
	stores []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var errNoStores = errors.New("credential chain needs at least one store")

func NewStore(stores ...ports.SecretStore) *Store {
	store, err := NewStoreChecked(stores...)
	if err != nil {
		panic(err)
	}
	return store
}

func NewStoreChecked(stores ...ports.SecretStore) (*Store, error) {
	if len(stores) == 0 {
		return nil, errNoStores
	}
	for i, store := range stores {
		if store == nil {
			return nil, fmt.Errorf("credential store %d is nil", i+1)
		}
	}
	return &Store{stores: stores}, nil
}

// NewPassWithFileFallback prefers pass entries under prefix and falls back
// to 0600 files below fileRoot, for hosts without pass.
func NewPassWithFileFallback(prefix, fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(prefix), filecache.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var failures []error
	for i, store := range s.stores {
		value, err := store.Get(ctx, key)
		switch {
		case err == nil:
			return value, nil
		case interrupted(err):
			return "", err
		case absent(err):
			continue
		}
		failures = append(failures, fmt.Errorf("store %d: %w", i+1, err))
	}

	if len(failures) == 0 {
		return "", fmt.Errorf("credential %q: %w", key, domain.ErrCacheMiss)
	}
	return "", fmt.Errorf("read credential %q: %w", key, errors.Join(failures...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var failures []error
	for i, store := range s.stores {
		err := store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if interrupted(err) {
			return err
		}
		failures = append(failures, fmt.Errorf("store %d: %w", i+1, err))
	}
	return fmt.Errorf("store credential %q: %w", key, errors.Join(failures...))
}

// Delete clears key from every store so an older copy cannot resurface from
// a later one. It fails only when no store could be cleared.
func (s *Store) Delete(ctx context.Context, key string) error {
	var failures []error
	for i, store := range s.stores {
		err := store.Delete(ctx, key)
		if interrupted(err) {
			return err
		}
		if err != nil {
			failures = append(failures, fmt.Errorf("store %d: %w", i+1, err))
		}
	}
	if len(failures) == len(s.stores) {
		return fmt.Errorf("delete credential %q: %w", key, errors.Join(failures...))
	}
	return nil
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// absent reports a store that does not hold the key, including pass when it
// is not installed.
func absent(err error) bool {
	return errors.Is(err, domain.ErrCacheMiss) || errors.Is(err, passstore.ErrUnavailable)
}
