// Package kvstore holds the string key-value engines used for the local
// session record and for last-known-good record snapshots.
package kvstore

import (
	"context"
	"errors"
)

// ErrDeleteUnsupported is returned by engines that cannot remove keys.
// Callers clear the key by writing an empty string instead.
var ErrDeleteUnsupported = errors.New("kvstore: delete not supported")

// Store is a string-valued key-value store.
type Store interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// prefixed namespaces every key of an underlying store.
type prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix returns a Store that prepends prefix to every key. An empty
// prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{inner: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}
