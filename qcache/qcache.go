// Package qcache caches the results of ledger queries. A Cache is passed explicitly to the components
// that read through it or invalidate it.
package qcache

import (
	"context"
	"strconv"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/util"

	"golang.org/x/sync/singleflight"
)

var Log = logger.DiscardLog

// Key identifies a query about an address, e.g. its followers or its handle.
type Key struct {
	Address address.Address
	Query   string
}

func (k Key) String() string {
	return k.Query + "(" + k.Address.Short() + ")"
}

type State uint8

const (
	Loading State = iota
	Error
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Entry is a snapshot of a query. Value is set when State is Ready, Err when State is Error.
type Entry struct {
	State State
	Value any
	Err   error
}

type Fetcher func(ctx context.Context) (any, error)

// Cache is safe for concurrent use. Errors are cached like values: an errored query is fetched again
// only after InvalidateAll.
type Cache struct {
	mut util.Mutex

	gen     uint64
	entries map[Key]Entry

	// in-flight fetches are keyed by generation too, so a load after InvalidateAll never joins a
	// fetch started before it
	group singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[Key]Entry),
	}
}

// Load returns the cached result of key, or runs fetch. Concurrent loads of the same key share a single
// fetch. The fetch is not bound to ctx: a caller giving up does not abort it for the others.
func (c *Cache) Load(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mut.Lock()
	if e, ok := c.entries[key]; ok {
		c.mut.Unlock()
		return e.Value, e.Err
	}
	ch := c.start(ctx, key, fetch)
	c.mut.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns the current snapshot of key without blocking. When nothing is cached and no fetch is
// running, it starts one in the background and reports Loading.
func (c *Cache) Peek(key Key, fetch Fetcher) Entry {
	c.mut.Lock()
	defer c.mut.Unlock()

	if e, ok := c.entries[key]; ok {
		return e
	}
	c.start(context.Background(), key, fetch)
	return Entry{State: Loading}
}

// start joins the in-flight fetch of key, starting it if needed. c.mut must be held; DoChan runs
// fetch in its own goroutine so the lock is not held by it.
func (c *Cache) start(ctx context.Context, key Key, fetch Fetcher) <-chan singleflight.Result {
	gen := c.gen
	id := strconv.FormatUint(gen, 10) + "/" + key.Query + "/" + key.Address.String()

	return c.group.DoChan(id, func() (any, error) {
		Log.Devf("fetching %s", key)

		v, err := fetch(context.WithoutCancel(ctx))

		c.mut.Lock()
		if gen == c.gen {
			e := Entry{State: Ready, Value: v}
			if err != nil {
				e = Entry{State: Error, Err: err}
			}
			c.entries[key] = e
		} else {
			Log.Devf("dropping stale result of %s", key)
		}
		c.mut.Unlock()

		return v, err
	})
}

// InvalidateAll drops every entry. Fetches already running complete for their callers but their
// results are not stored.
func (c *Cache) InvalidateAll() {
	c.mut.Lock()
	defer c.mut.Unlock()

	c.gen++
	c.entries = make(map[Key]Entry)

	Log.Debugf("cache invalidated, generation %d", c.gen)
}

// Generation is incremented by every InvalidateAll.
func (c *Cache) Generation() uint64 {
	c.mut.Lock()
	defer c.mut.Unlock()

	return c.gen
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mut.Lock()
	defer c.mut.Unlock()

	return len(c.entries)
}
