package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher is the shape of every cacheable lookup: the entity the result
// belongs to, the store it may be cached in, and whatever else the lookup
// needs.
type Fetcher[E, A, V any] func(ctx context.Context, entity E, store *Store, args A) (V, error)

type memoConfig[V any] struct {
	skip func(V) bool
}

type MemoOption[V any] func(*memoConfig[V])

// SkipWhen keeps results for which skip returns true out of the cache. They
// are still returned to the caller.
func SkipWhen[V any](skip func(V) bool) MemoOption[V] {
	return func(c *memoConfig[V]) { c.skip = skip }
}

// Memoize wraps fetch so that its result is stored under (key(entity), id)
// and served from the store until it is older than ttl.
//
// Load errors are returned. Save errors are logged and the fresh value is
// returned anyway.
func Memoize[E, A, V any](id string, ttl time.Duration, key func(E) string, fetch Fetcher[E, A, V], opts ...MemoOption[V]) Fetcher[E, A, V] {
	var cfg memoConfig[V]
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, entity E, store *Store, args A) (V, error) {
		namespace := key(entity)

		var cached V
		hit, err := store.Load(namespace, id, ttl, &cached)
		if err != nil {
			var zero V
			return zero, err
		}
		if hit {
			return cached, nil
		}

		result, err := fetch(ctx, entity, store, args)
		if err != nil {
			return result, err
		}

		if cfg.skip != nil && cfg.skip(result) {
			return result, nil
		}

		if err := store.Save(namespace, id, result); err != nil {
			store.logger().WithError(err).WithFields(logrus.Fields{
				"namespace": namespace,
				"id":        id,
			}).Warn("Could not write cache entry")
		}
		return result, nil
	}
}

func (s *Store) logger() logrus.FieldLogger {
	if s == nil || s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}
