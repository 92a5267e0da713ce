// Package cache holds the optional server-side cache for list reads.
//
// Every key has a generation counter. Writers bump it through Invalidate;
// readers take the generation before reading the store and hand it back to
// SetJSONIf, which refuses to store a snapshot once the generation has moved.
package cache

import (
	"context"
)

// Cache stores JSON documents by key. A miss is (false, nil).
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Generation(ctx context.Context, key string) (int64, error)
	// SetJSONIf stores value only while key is still at generation gen and
	// reports whether it did.
	SetJSONIf(ctx context.Context, key string, gen int64, value any) (bool, error)
	// Invalidate bumps the generation of key and drops its value.
	Invalidate(ctx context.Context, key string) error
	Close() error
}

const (
	UsersKey = "userposts:users"
	PostsKey = "userposts:posts"
)

func generationKey(key string) string {
	return key + ":gen"
}

// Noop never hits. It stands in when no Redis address is configured.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error)          { return false, nil }
func (Noop) Generation(context.Context, string) (int64, error)           { return 0, nil }
func (Noop) SetJSONIf(context.Context, string, int64, any) (bool, error) { return false, nil }
func (Noop) Invalidate(context.Context, string) error                    { return nil }
func (Noop) Close() error                                                { return nil }
