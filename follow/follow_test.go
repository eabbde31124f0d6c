package follow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/follow"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/notify"
	"github.com/virel-project/virel-social/qcache"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
	"github.com/zeebo/assert"
	"github.com/zeebo/blake3"
)

func key(name string) bitcrypto.Privkey {
	return bitcrypto.GenerateKeypair(blake3.Sum256([]byte(name)))
}

func addr(name string) address.Address {
	return address.FromPubKey(key(name).Public())
}

// graph is an in-memory follow graph. It is both the edge source and the ledger: a confirmed
// transaction is applied to it.
type graph struct {
	mut sync.Mutex

	edges     []follow.Edge
	handles   map[address.Address]*follow.Handle
	handleErr map[address.Address]error

	fetchErr   error
	submitErr  error
	confirmErr error

	fetches       int
	handleFetches int
	submitted     []*transaction.Transaction

	// when set, edge fetches wait for it to be closed
	block chan struct{}
}

func newGraph() *graph {
	return &graph{
		handles:   make(map[address.Address]*follow.Handle),
		handleErr: make(map[address.Address]error),
	}
}

func (g *graph) add(from, to address.Address) {
	g.mut.Lock()
	defer g.mut.Unlock()

	g.edges = append(g.edges, follow.Edge{From: from, To: to, Account: address.ConnectionAccount(from, to)})
}

func (g *graph) remove(from, to address.Address) {
	g.mut.Lock()
	defer g.mut.Unlock()

	for i, e := range g.edges {
		if e.From == from && e.To == to {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return
		}
	}
}

func (g *graph) list(match func(follow.Edge) bool) ([]follow.Edge, error) {
	g.mut.Lock()
	block := g.block
	g.mut.Unlock()
	if block != nil {
		<-block
	}

	g.mut.Lock()
	defer g.mut.Unlock()

	g.fetches++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	var out []follow.Edge
	for _, e := range g.edges {
		if match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (g *graph) EdgesTo(_ context.Context, a address.Address) ([]follow.Edge, error) {
	return g.list(func(e follow.Edge) bool { return e.To == a })
}

func (g *graph) EdgesFrom(_ context.Context, a address.Address) ([]follow.Edge, error) {
	return g.list(func(e follow.Edge) bool { return e.From == a })
}

func (g *graph) ResolveHandle(_ context.Context, a address.Address) (*follow.Handle, error) {
	g.mut.Lock()
	defer g.mut.Unlock()

	g.handleFetches++
	if err := g.handleErr[a]; err != nil {
		return nil, err
	}
	return g.handles[a], nil
}

func (g *graph) Submit(_ context.Context, tx *transaction.Transaction) (util.Hash, error) {
	g.mut.Lock()
	defer g.mut.Unlock()

	if g.submitErr != nil {
		return util.Hash{}, errors.Wrap(ledger.ErrBroadcastRejected, g.submitErr.Error())
	}
	g.submitted = append(g.submitted, tx)
	return tx.Hash(), nil
}

func (g *graph) Confirm(_ context.Context, txid util.Hash, level ledger.Commitment) error {
	g.mut.Lock()
	var tx *transaction.Transaction
	for _, v := range g.submitted {
		if v.Hash() == txid {
			tx = v
		}
	}
	err := g.confirmErr
	g.mut.Unlock()

	if err != nil {
		return err
	}
	if tx == nil || level != ledger.Finalized {
		return errors.New("unexpected confirm")
	}
	switch d := tx.Data.(type) {
	case *transaction.Follow:
		g.add(tx.SignerAddress(), d.Target)
	case *transaction.Unfollow:
		g.remove(tx.SignerAddress(), d.Target)
	}
	return nil
}

type keySigner struct {
	key   bitcrypto.Privkey
	nonce uint64
}

func (s *keySigner) Address() address.Address {
	return address.FromPubKey(s.key.Public())
}

func (s *keySigner) Sign(_ context.Context, data transaction.TransactionData) (*transaction.Transaction, error) {
	s.nonce++
	tx := transaction.New(s.key.Public(), data, s.nonce)
	return tx, tx.Sign(s.key)
}

func TestReaderDedup(t *testing.T) {
	g := newGraph()
	target := addr("target")
	g.add(addr("a"), target)
	g.add(addr("b"), target)
	g.add(addr("a"), target)

	r := follow.NewReader(qcache.New(), g, g)
	res := r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Ready)
	assert.Equal(t, len(res.Edges()), 2)
	assert.Equal(t, res.Edges()[0].From, addr("a"))
	assert.Equal(t, res.Edges()[1].From, addr("b"))

	res = r.ConnectionsFrom(context.Background(), addr("a"))
	assert.Equal(t, len(res.Edges()), 1)
	assert.Equal(t, res.Edges()[0].To, target)
}

func TestReaderErrorCached(t *testing.T) {
	g := newGraph()
	g.fetchErr = errors.New("connection refused")
	target := addr("target")

	r := follow.NewReader(qcache.New(), g, nil)
	res := r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Error)
	assert.True(t, errors.Is(res.Err(), follow.ErrFetch))

	g.fetchErr = nil
	g.add(addr("a"), target)

	res = r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Error)
	assert.Equal(t, g.fetches, 1)

	r.Refresh()
	res = r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Ready)
	assert.Equal(t, len(res.Edges()), 1)
	assert.Equal(t, g.fetches, 2)
}

func TestReaderLoadCancelled(t *testing.T) {
	g := newGraph()
	target := addr("target")
	g.add(addr("a"), target)
	g.block = make(chan struct{})

	r := follow.NewReader(qcache.New(), g, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.ConnectionsTo(ctx, target)
	assert.Equal(t, res.State(), follow.Error)
	assert.True(t, errors.Is(res.Err(), follow.ErrFetch))

	// the fetch is shared and completes for the next load
	close(g.block)
	res = r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Ready)
	assert.Equal(t, len(res.Edges()), 1)
	assert.Equal(t, g.fetches, 1)
}

func TestReaderHandles(t *testing.T) {
	g := newGraph()
	target := addr("target")
	g.add(addr("alice"), target)
	g.add(addr("bob"), target)
	g.handles[addr("alice")] = &follow.Handle{Handle: "alice", AvatarURL: "https://example.com/a.png"}
	g.handleErr[addr("bob")] = errors.New("boom")

	r := follow.NewReader(qcache.New(), g, g)
	res := r.ConnectionsTo(context.Background(), target)
	assert.Equal(t, res.State(), follow.Ready)

	edges := res.Edges()
	assert.Equal(t, edges[0].FromHandle.Handle, "alice")
	assert.Nil(t, edges[1].FromHandle)
	assert.Nil(t, edges[0].ToHandle)

	assert.Equal(t, r.Handle(context.Background(), addr("alice")).AvatarURL, "https://example.com/a.png")
	assert.Nil(t, r.Handle(context.Background(), addr("nobody")))
}

func TestReaderPeek(t *testing.T) {
	g := newGraph()
	target := addr("target")
	g.add(addr("alice"), target)
	g.handles[addr("alice")] = &follow.Handle{Handle: "alice"}

	r := follow.NewReader(qcache.New(), g, g)
	assert.Equal(t, r.Peek(target, follow.To).State(), follow.Loading)

	r.Load(context.Background(), target, follow.To)

	res := r.Peek(target, follow.To)
	assert.Equal(t, res.State(), follow.Ready)
	assert.Equal(t, res.Edges()[0].FromHandle.Handle, "alice")
	assert.False(t, res.Edges()[0].FromPending)
}

func TestProjectPreview(t *testing.T) {
	g := newGraph()
	target := addr("target")
	viewer := addr("f2")
	names := []string{"f0", "f1", "f2", "f3", "f4"}
	for _, n := range names {
		g.add(addr(n), target)
	}
	g.add(target, addr("f0"))
	g.handles[addr("f1")] = &follow.Handle{Handle: "one"}

	r := follow.NewReader(qcache.New(), g, g)
	to := r.ConnectionsTo(context.Background(), target)
	from := r.ConnectionsFrom(context.Background(), target)

	v := follow.Project(to, from, viewer, target)
	assert.Nil(t, v.Err)
	assert.False(t, v.Skeleton)
	assert.Equal(t, v.FollowerCount, 5)
	assert.Equal(t, v.FollowingCount, 1)
	assert.True(t, v.IsFollowing)
	assert.False(t, v.IsSelf)
	assert.Equal(t, len(v.FollowedBy), 4)
	assert.Equal(t, v.Others, 1)
	for i, l := range v.FollowedBy {
		assert.Equal(t, l.Address, addr(names[i]))
	}
	assert.Equal(t, v.FollowedBy[0].Text, addr("f0").Short())
	assert.Equal(t, v.FollowedBy[0].AvatarURL, follow.DefaultAvatar(addr("f0")))
	assert.Equal(t, v.FollowedBy[1].Text, "one")
	assert.True(t, v.ShowUnfollow())
	assert.False(t, v.ShowFollow())

	v = follow.Project(to, from, addr("stranger"), target)
	assert.False(t, v.IsFollowing)
	assert.True(t, v.ShowFollow())
}

func TestProjectFewFollowers(t *testing.T) {
	target := addr("target")
	to := follow.ReadyResult([]follow.Edge{{From: addr("a"), To: target}, {From: addr("b"), To: target}})

	v := follow.Project(to, follow.ReadyResult(nil), addr("c"), target)
	assert.Equal(t, v.FollowerCount, 2)
	assert.Equal(t, len(v.FollowedBy), 2)
	assert.Equal(t, v.Others, 0)
}

func TestProjectStates(t *testing.T) {
	target := addr("target")
	ready := follow.ReadyResult(nil)
	failed := follow.ErrorResult(follow.ErrFetch)

	v := follow.Project(follow.LoadingResult(), ready, addr("viewer"), target)
	assert.True(t, v.Skeleton)
	assert.Equal(t, v.FollowerCount, 0)
	assert.False(t, v.ShowFollow())
	assert.False(t, v.ShowUnfollow())

	v = follow.Project(follow.LoadingResult(), failed, addr("viewer"), target)
	assert.False(t, v.Skeleton)
	assert.Equal(t, v.Err, follow.ErrFetch)
	assert.False(t, v.ShowFollow())

	v = follow.Project(ready, ready, target, target)
	assert.True(t, v.IsSelf)
	assert.False(t, v.ShowFollow())
	assert.False(t, v.ShowUnfollow())

	v = follow.Project(ready, ready, address.INVALID_ADDRESS, target)
	assert.False(t, v.ShowFollow())
	assert.False(t, v.ShowUnfollow())
}

func setupWriter(g *graph, name string) (*follow.Reader, *follow.Writer, *notify.Recorder) {
	cache := qcache.New()
	rec := &notify.Recorder{}
	r := follow.NewReader(cache, g, g)
	w := follow.NewWriter(cache, g, &keySigner{key: key(name)}, rec)
	return r, w, rec
}

func TestFollowUnfollow(t *testing.T) {
	ctx := context.Background()
	g := newGraph()
	viewer, target := addr("viewer"), addr("target")
	r, w, rec := setupWriter(g, "viewer")

	v := follow.Project(r.ConnectionsTo(ctx, target), r.ConnectionsFrom(ctx, target), viewer, target)
	assert.False(t, v.IsFollowing)
	assert.True(t, v.ShowFollow())

	res := w.Follow(ctx, target)
	assert.True(t, res.OK())
	assert.False(t, res.TXID.IsZero())

	v = follow.Project(r.ConnectionsTo(ctx, target), r.ConnectionsFrom(ctx, target), viewer, target)
	assert.True(t, v.IsFollowing)
	assert.Equal(t, v.FollowerCount, 1)

	all := rec.All()
	assert.Equal(t, len(all), 2)
	assert.Equal(t, all[0].Kind, notify.Info)
	assert.Equal(t, all[0].Message, "Confirming transaction: "+util.ShortString(res.TXID.String()))
	assert.Equal(t, all[1].Kind, notify.Success)
	assert.Equal(t, all[1].Message, "Followed: "+target.Short()+", TX: "+util.ShortString(res.TXID.String()))
	assert.NotEqual(t, all[1].Link, "")

	res = w.Unfollow(ctx, target)
	assert.True(t, res.OK())

	v = follow.Project(r.ConnectionsTo(ctx, target), r.ConnectionsFrom(ctx, target), viewer, target)
	assert.False(t, v.IsFollowing)
	assert.Equal(t, v.FollowerCount, 0)
	assert.Equal(t, rec.Count(notify.Success), 2)
	assert.Equal(t, rec.All()[3].Message, "Unfollowed: "+target.Short()+", TX: "+util.ShortString(res.TXID.String()))
}

func TestFollowInvalidatesEveryQuery(t *testing.T) {
	ctx := context.Background()
	g := newGraph()
	viewer, target := addr("viewer"), addr("target")
	g.add(viewer, addr("other"))
	g.add(addr("a"), addr("unrelated"))
	g.handles[addr("other")] = &follow.Handle{Handle: "other"}

	cache := qcache.New()
	r := follow.NewReader(cache, g, g)
	w := follow.NewWriter(cache, g, &keySigner{key: key("viewer")}, nil)

	load := func() {
		r.ConnectionsFrom(ctx, viewer)
		r.ConnectionsTo(ctx, addr("unrelated"))
		r.Handle(ctx, addr("other"))
	}

	load()
	assert.Equal(t, g.fetches, 2)
	assert.Equal(t, g.handleFetches, 4)
	load()
	assert.Equal(t, g.fetches, 2)
	assert.Equal(t, g.handleFetches, 4)

	res := w.Follow(ctx, target)
	assert.True(t, res.OK())
	assert.Equal(t, cache.Len(), 0)

	load()
	assert.Equal(t, g.fetches, 4)
	// viewer, other and target, then a and unrelated
	assert.Equal(t, g.handleFetches, 9)
	assert.Equal(t, len(r.ConnectionsFrom(ctx, viewer).Edges()), 2)
	assert.Equal(t, r.Handle(ctx, addr("other")).Handle, "other")
}

func TestFollowRejected(t *testing.T) {
	ctx := context.Background()
	g := newGraph()
	viewer, target := addr("viewer"), addr("target")
	g.add(addr("other"), target)
	g.submitErr = errors.New("insufficient nonce")
	r, w, rec := setupWriter(g, "viewer")

	before := r.ConnectionsTo(ctx, target)

	res := w.Follow(ctx, target)
	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Err, ledger.ErrBroadcastRejected))

	after := r.ConnectionsTo(ctx, target)
	assert.DeepEqual(t, after.Edges(), before.Edges())
	assert.Equal(t, g.fetches, 1)

	v := follow.Project(after, r.ConnectionsFrom(ctx, target), viewer, target)
	assert.False(t, v.IsFollowing)

	all := rec.All()
	assert.Equal(t, len(all), 1)
	assert.Equal(t, all[0].Kind, notify.Failure)
	assert.Equal(t, all[0].Message, "Unable to follow, try again later.")
	assert.Equal(t, all[0].Link, "")
}

func TestFollowNotFinalized(t *testing.T) {
	ctx := context.Background()
	g := newGraph()
	target := addr("target")
	g.confirmErr = ledger.ErrFinalizationTimeout
	r, w, rec := setupWriter(g, "viewer")

	r.ConnectionsTo(ctx, target)

	res := w.Unfollow(ctx, target)
	assert.True(t, errors.Is(res.Err, ledger.ErrFinalizationTimeout))
	assert.False(t, res.TXID.IsZero())

	r.ConnectionsTo(ctx, target)
	assert.Equal(t, g.fetches, 1)

	assert.Equal(t, rec.Count(notify.Info), 1)
	assert.Equal(t, rec.Count(notify.Failure), 1)
	assert.Equal(t, rec.Count(notify.Success), 0)
	assert.Equal(t, rec.All()[1].Message, "Unable to unfollow, try again later.")
}

func TestFollowSelf(t *testing.T) {
	g := newGraph()
	_, w, rec := setupWriter(g, "viewer")

	res := w.Follow(context.Background(), addr("viewer"))
	assert.True(t, errors.Is(res.Err, follow.ErrSelfConnection))
	assert.Equal(t, len(g.submitted), 0)
	assert.Equal(t, rec.Count(notify.Failure), 1)
}
