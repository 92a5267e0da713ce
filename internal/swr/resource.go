package swr

import (
	"context"
	"time"
)

// Snapshot is the typed form of State.
type Snapshot[T any] struct {
	Data      T
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

// Resource is a typed handle on one cache key.
type Resource[T any] struct {
	cache *Cache
	key   string
}

func NewResource[T any](cache *Cache, key string, fetch func(ctx context.Context) (T, error)) *Resource[T] {
	cache.Register(key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return &Resource[T]{cache: cache, key: key}
}

func (r *Resource[T]) Key() string {
	return r.key
}

// Get returns the current value, fetching it unless the cache entry is fresh.
func (r *Resource[T]) Get(ctx context.Context) (T, error) {
	state, err := r.cache.Get(ctx, r.key)
	return typed[T](state).Data, err
}

func (r *Resource[T]) Snapshot() Snapshot[T] {
	return typed[T](r.cache.Snapshot(r.key))
}

func (r *Resource[T]) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx, r.key)
}

func (r *Resource[T]) Subscribe(fn func(Snapshot[T])) func() {
	return r.cache.Subscribe(r.key, func(state State) {
		fn(typed[T](state))
	})
}

func typed[T any](state State) Snapshot[T] {
	data, _ := state.Data.(T)
	return Snapshot[T]{
		Data:      data,
		Err:       state.Err,
		Loading:   state.Loading,
		UpdatedAt: state.UpdatedAt,
	}
}
