// Package kvstore provides the narrow key-value persistence used for session
// tokens and wizard drafts. Implementations must be safe for concurrent use.
package kvstore

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// WithPrefix namespaces all keys of a Store. The web gateway uses it to scope
// one browser session's keys under its session ID.
func WithPrefix(s Store, prefix string) Store {
	return &prefixed{s: s, prefix: prefix}
}

type prefixed struct {
	s      Store
	prefix string
}

var _ Store = (*prefixed)(nil)

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.s.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.s.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.s.Delete(ctx, p.prefix+key)
}
