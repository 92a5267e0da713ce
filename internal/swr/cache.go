// Package swr is a keyed stale-while-revalidate cache for client-side
// collection state.
//
// Each key holds the last fetched value, the last error and a loading flag.
// Concurrent reads of one key share a single fetch and fresh entries are
// served without a request. Invalidate always refetches. Failed fetches are
// retried in the background. Mutations are never
// merged into cached data: callers invalidate the key and read it again.
package swr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrUnknownKey = errors.New("swr: key has no fetcher")

type Options struct {
	// DedupInterval is how long a successful fetch satisfies Get without a new request.
	DedupInterval         time.Duration
	RevalidateOnFocus     bool
	RevalidateOnReconnect bool
	// RefreshInterval > 0 makes Run revalidate every key on that period.
	RefreshInterval    time.Duration
	ErrorRetryCount    int
	ErrorRetryInterval time.Duration
	Logger             *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		DedupInterval:         2 * time.Second,
		RevalidateOnFocus:     true,
		RevalidateOnReconnect: true,
		RefreshInterval:       0,
		ErrorRetryCount:       3,
		ErrorRetryInterval:    5 * time.Second,
	}
}

type Fetcher func(ctx context.Context) (any, error)

// State is a point-in-time view of one key.
type State struct {
	Data      any
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

type entry struct {
	state   State
	fetcher Fetcher
	subs    map[uint64]func(State)
	// started counts fetches begun; applied is the newest one whose result was stored.
	started  uint64
	applied  uint64
	inflight int
}

type Cache struct {
	opts    Options
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	nextSub uint64

	// bg bounds fetches and background retries. Close cancels it.
	bg      context.Context
	stop    context.CancelFunc
	retries sync.WaitGroup
	closed  bool
}

func New(opts Options) *Cache {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	bg, stop := context.WithCancel(context.Background())
	return &Cache{
		opts:    opts,
		entries: make(map[string]*entry),
		bg:      bg,
		stop:    stop,
	}
}

// Close cancels pending retries and in-flight fetches and waits for the
// retry goroutines to exit.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.retries.Wait()
}

// Register binds a fetcher to key. Registering again replaces the fetcher
// but keeps cached state and subscribers.
func (c *Cache) Register(key string, fetcher Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	e.fetcher = fetcher
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: make(map[uint64]func(State))}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached state for key, fetching first unless the entry is
// still fresh. The returned error is the fetch error, if any; State.Data may
// still hold the previous value.
func (c *Cache) Get(ctx context.Context, key string) (State, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.state.Err == nil && !e.state.UpdatedAt.IsZero() && time.Since(e.state.UpdatedAt) < c.opts.DedupInterval {
		state := e.state
		c.mu.Unlock()
		return state, nil
	}
	c.mu.Unlock()

	return c.Revalidate(ctx, key)
}

// Revalidate fetches key, joining a fetch already in flight.
func (c *Cache) Revalidate(ctx context.Context, key string) (State, error) {
	return c.fetch(ctx, key, false, 0)
}

// Invalidate discards freshness for key and refetches it. It never joins a
// fetch that started before the call, so the result reflects every write the
// caller has already seen acknowledged.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	_, err := c.fetch(ctx, key, true, 0)
	return err
}

// fetch makes one attempt inline. A failed attempt schedules the next one in
// the background until ErrorRetryCount is used up. The caller stops waiting
// when its ctx is done; the fetch itself keeps going for the other callers
// sharing it.
func (c *Cache) fetch(ctx context.Context, key string, fresh bool, attempt int) (State, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.fetcher == nil {
		c.mu.Unlock()
		return State{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	fetcher := e.fetcher
	c.mu.Unlock()

	run := func() (any, error) {
		c.mu.Lock()
		e.started++
		e.inflight++
		seq := e.started
		e.state.Loading = true
		subs, state := c.subscribersLocked(e)
		c.mu.Unlock()
		notify(subs, state)

		data, err := c.call(ctx, fetcher)

		c.mu.Lock()
		if seq > e.applied {
			e.applied = seq
			if err != nil {
				e.state.Err = err
			} else {
				e.state.Data = data
				e.state.Err = nil
				e.state.UpdatedAt = time.Now()
			}
		}
		e.inflight--
		e.state.Loading = e.inflight > 0
		retry := err != nil && attempt < c.opts.ErrorRetryCount && !c.closed
		if retry {
			c.retries.Add(1)
		}
		subs, state = c.subscribersLocked(e)
		c.mu.Unlock()
		notify(subs, state)

		if retry {
			c.opts.Logger.Warn("fetch failed, retrying",
				slog.String("key", key),
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()),
			)
			go c.retryLater(key, e, seq, attempt+1)
		}
		return nil, err
	}

	var results <-chan singleflight.Result
	if fresh {
		own := make(chan singleflight.Result, 1)
		go func() {
			_, err := run()
			own <- singleflight.Result{Err: err}
		}()
		results = own
	} else {
		results = c.group.DoChan(key, run)
	}

	select {
	case <-ctx.Done():
		return c.Snapshot(key), ctx.Err()
	case res := <-results:
		return c.Snapshot(key), res.Err
	}
}

// call runs fetcher with the values of ctx but not its cancellation, so the
// caller that started a shared fetch cannot fail it for the others. Close
// still cancels it.
func (c *Cache) call(ctx context.Context, fetcher Fetcher) (any, error) {
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(c.bg, cancel)
	defer stop()

	return fetcher(fctx)
}

// retryLater refetches key after ErrorRetryInterval unless a newer fetch has
// started since attempt seq; that fetch owns retrying from then on.
func (c *Cache) retryLater(key string, e *entry, seq uint64, attempt int) {
	defer c.retries.Done()

	timer := time.NewTimer(c.opts.ErrorRetryInterval)
	defer timer.Stop()
	select {
	case <-c.bg.Done():
		return
	case <-timer.C:
	}

	c.mu.Lock()
	superseded := e.started > seq
	c.mu.Unlock()
	if superseded {
		return
	}

	_, _ = c.fetch(context.Background(), key, true, attempt)
}

// Snapshot returns the cached state for key without fetching.
func (c *Cache) Snapshot(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return State{}
}

// Subscribe calls fn with the new state every time key changes. The returned
// function removes the subscription.
func (c *Cache) Subscribe(key string, fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(e.subs, id)
	}
}

// Keys lists the registered keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := lo.Keys(lo.PickBy(c.entries, func(_ string, e *entry) bool {
		return e.fetcher != nil
	}))
	sort.Strings(keys)
	return keys
}

// RevalidateAll refetches every registered key concurrently.
func (c *Cache) RevalidateAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range c.Keys() {
		g.Go(func() error {
			_, err := c.Revalidate(ctx, key)
			return err
		})
	}
	return g.Wait()
}

// OnFocus should be called when the user returns to the application.
func (c *Cache) OnFocus(ctx context.Context) error {
	if !c.opts.RevalidateOnFocus {
		return nil
	}
	return c.RevalidateAll(ctx)
}

// OnReconnect should be called when network connectivity comes back.
func (c *Cache) OnReconnect(ctx context.Context) error {
	if !c.opts.RevalidateOnReconnect {
		return nil
	}
	return c.RevalidateAll(ctx)
}

// Run polls every key on RefreshInterval until ctx is done. With a zero
// interval it returns immediately.
func (c *Cache) Run(ctx context.Context) {
	if c.opts.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RevalidateAll(ctx); err != nil {
				c.opts.Logger.Warn("periodic revalidation failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (c *Cache) subscribersLocked(e *entry) ([]func(State), State) {
	return lo.Values(e.subs), e.state
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}
