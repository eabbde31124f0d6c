package follow

import (
	"context"
	"sync"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/qcache"

	"github.com/pkg/errors"
)

const (
	queryTo     = "connections_to"
	queryFrom   = "connections_from"
	queryHandle = "handle"
)

// Reader loads the edge sets of addresses through a cache. Errors are cached too and are not retried
// until Refresh or a successful write invalidates the cache.
type Reader struct {
	cache   *qcache.Cache
	edges   EdgeSource
	handles HandleResolver // optional
}

// NewReader returns a reader. handles may be nil, in which case edges are not decorated.
func NewReader(cache *qcache.Cache, edges EdgeSource, handles HandleResolver) *Reader {
	return &Reader{
		cache:   cache,
		edges:   edges,
		handles: handles,
	}
}

// ConnectionsTo returns the edges pointing to addr: its followers.
func (r *Reader) ConnectionsTo(ctx context.Context, addr address.Address) Result {
	return r.Load(ctx, addr, To)
}

// ConnectionsFrom returns the edges starting from addr: who it follows.
func (r *Reader) ConnectionsFrom(ctx context.Context, addr address.Address) Result {
	return r.Load(ctx, addr, From)
}

// Load blocks until the edge set is available, or failed. Every error result matches ErrFetch. When
// ctx is done first the fetch keeps running in the background and its result is still cached.
func (r *Reader) Load(ctx context.Context, addr address.Address, dir Direction) Result {
	v, err := r.cache.Load(ctx, edgesKey(addr, dir), r.fetchEdges(addr, dir))
	if err != nil {
		if !errors.Is(err, ErrFetch) {
			err = errors.Wrapf(ErrFetch, "connections %s %s: %v", dir, addr.Short(), err)
		}
		return ErrorResult(err)
	}
	return ReadyResult(r.decorate(ctx, v.([]Edge)))
}

// Peek returns the edge set if it is cached, without blocking. Otherwise it starts loading it in the
// background and returns a Loading result. Handles which are not loaded yet are reported as pending.
func (r *Reader) Peek(addr address.Address, dir Direction) Result {
	e := r.cache.Peek(edgesKey(addr, dir), r.fetchEdges(addr, dir))
	switch e.State {
	case qcache.Ready:
		return ReadyResult(r.decoratePeek(e.Value.([]Edge)))
	case qcache.Error:
		return ErrorResult(e.Err)
	default:
		return LoadingResult()
	}
}

// Refresh drops every cached query, errors included, so that the next loads fetch again.
func (r *Reader) Refresh() {
	r.cache.InvalidateAll()
}

// Handle returns the handle of addr, or nil when it has none or it could not be resolved.
func (r *Reader) Handle(ctx context.Context, addr address.Address) *Handle {
	if r.handles == nil {
		return nil
	}
	v, err := r.cache.Load(ctx, handleKey(addr), r.fetchHandle(addr))
	if err != nil {
		Log.Debugf("handle of %s unavailable: %v", addr, err)
		return nil
	}
	return v.(*Handle)
}

func edgesKey(addr address.Address, dir Direction) qcache.Key {
	q := queryTo
	if dir == From {
		q = queryFrom
	}
	return qcache.Key{Address: addr, Query: q}
}

func handleKey(addr address.Address) qcache.Key {
	return qcache.Key{Address: addr, Query: queryHandle}
}

func (r *Reader) fetchEdges(addr address.Address, dir Direction) qcache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var edges []Edge
		var err error
		if dir == From {
			edges, err = r.edges.EdgesFrom(ctx, addr)
		} else {
			edges, err = r.edges.EdgesTo(ctx, addr)
		}
		if err != nil {
			Log.Debugf("fetching connections %s %s failed: %v", dir, addr, err)
			return nil, errors.Wrapf(ErrFetch, "connections %s %s: %v", dir, addr.Short(), err)
		}
		return dedup(edges), nil
	}
}

func (r *Reader) fetchHandle(addr address.Address) qcache.Fetcher {
	return func(ctx context.Context) (any, error) {
		h, err := r.handles.ResolveHandle(ctx, addr)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

// endpoints returns the distinct addresses appearing in edges.
func endpoints(edges []Edge) []address.Address {
	seen := make(map[address.Address]struct{})
	var out []address.Address
	for _, e := range edges {
		for _, a := range [2]address.Address{e.From, e.To} {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				out = append(out, a)
			}
		}
	}
	return out
}

// decorate loads the handles of every address concurrently and returns a decorated copy of edges.
func (r *Reader) decorate(ctx context.Context, edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	if r.handles == nil {
		return out
	}

	addrs := endpoints(edges)
	handles := make(map[address.Address]*Handle, len(addrs))
	var mut sync.Mutex
	var wg sync.WaitGroup
	for _, a := range addrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := r.Handle(ctx, a)

			mut.Lock()
			handles[a] = h
			mut.Unlock()
		}()
	}
	wg.Wait()

	for i := range out {
		out[i].FromHandle = handles[out[i].From]
		out[i].ToHandle = handles[out[i].To]
	}
	return out
}

func (r *Reader) decoratePeek(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	if r.handles == nil {
		return out
	}

	for i := range out {
		out[i].FromHandle, out[i].FromPending = r.peekHandle(out[i].From)
		out[i].ToHandle, out[i].ToPending = r.peekHandle(out[i].To)
	}
	return out
}

func (r *Reader) peekHandle(addr address.Address) (*Handle, bool) {
	e := r.cache.Peek(handleKey(addr), r.fetchHandle(addr))
	switch e.State {
	case qcache.Ready:
		return e.Value.(*Handle), false
	case qcache.Error:
		Log.Debugf("handle of %s unavailable: %v", addr, e.Err)
		return nil, false
	default:
		return nil, true
	}
}
