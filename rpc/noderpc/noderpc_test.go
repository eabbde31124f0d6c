package noderpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/adb/boltdb"
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/blockchain"
	"github.com/virel-project/virel-social/follow"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/notify"
	"github.com/virel-project/virel-social/qcache"
	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/rpc/daemonrpc"
	"github.com/virel-project/virel-social/rpc/noderpc"
	"github.com/virel-project/virel-social/rpc/rpcserver"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/wallet"

	"github.com/tyler-smith/go-bip39"
	"github.com/zeebo/assert"
	"github.com/zeebo/blake3"
)

func setup(t *testing.T) (*blockchain.Blockchain, *daemonrpc.RpcClient) {
	db, err := boltdb.New(filepath.Join(t.TempDir(), "ledger.db"), 0o600)
	assert.NoError(t, err)

	bc, err := blockchain.New(db)
	assert.NoError(t, err)
	t.Cleanup(func() { bc.Close() })

	rs := rpcserver.New(rpcserver.Config{RateLimit: 100_000})
	noderpc.Register(rs, bc)

	ts := httptest.NewServer(rs)
	t.Cleanup(ts.Close)

	return bc, daemonrpc.NewRpcClient(ts.URL)
}

// produce runs the block producer until the test ends.
func produce(t *testing.T, bc *blockchain.Blockchain) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func openWallet(t *testing.T, cl *daemonrpc.RpcClient, name string) *wallet.Wallet {
	key := blake3.Sum256([]byte(name))
	mnemonic, err := bip39.NewMnemonic(key[:16])
	assert.NoError(t, err)

	w, _, err := wallet.CreateWalletFromMnemonic(cl, mnemonic, nil, true)
	assert.NoError(t, err)
	return w
}

func rpcCode(t *testing.T, err error) int {
	var rerr *rpc.Error
	assert.That(t, errors.As(err, &rerr))
	return rerr.Code
}

func TestInfoAndBlocks(t *testing.T) {
	bc, cl := setup(t)
	ctx := context.Background()

	info, err := cl.GetInfo(ctx, daemonrpc.GetInfoRequest{})
	assert.NoError(t, err)
	assert.Equal(t, info.Height, 0)
	assert.Equal(t, info.FinalityDepth, 3)

	_, err = bc.ProduceBlock()
	assert.NoError(t, err)

	info, err = cl.GetInfo(ctx, daemonrpc.GetInfoRequest{})
	assert.NoError(t, err)
	assert.Equal(t, info.Height, 1)

	bl, err := cl.GetBlockByHeight(ctx, daemonrpc.GetBlockByHeightRequest{Height: 1})
	assert.NoError(t, err)
	assert.Equal(t, bl.Block.Height, 1)
	assert.Equal(t, bl.Hash, info.TopHash)
	assert.Equal(t, bl.Block.Hash(), info.TopHash)

	_, err = cl.GetBlockByHeight(ctx, daemonrpc.GetBlockByHeightRequest{Height: 2})
	assert.Equal(t, rpcCode(t, err), rpc.CodeNotFound)
}

func TestTransactionLifecycle(t *testing.T) {
	bc, cl := setup(t)
	ctx := context.Background()

	alice := openWallet(t, cl, "alice")
	bob := openWallet(t, cl, "bob")

	tx, err := alice.Sign(ctx, &transaction.Follow{Target: bob.Address()})
	assert.NoError(t, err)

	_, err = cl.GetTransaction(ctx, daemonrpc.GetTransactionRequest{Txid: tx.Hash()})
	assert.Equal(t, rpcCode(t, err), rpc.CodeNotFound)

	res, err := cl.SubmitTransaction(ctx, daemonrpc.SubmitTransactionRequest{Hex: tx.Serialize()})
	assert.NoError(t, err)
	assert.Equal(t, res.TXID, tx.Hash())

	txres, err := cl.GetTransaction(ctx, daemonrpc.GetTransactionRequest{Txid: res.TXID})
	assert.NoError(t, err)
	assert.Equal(t, txres.Status, daemonrpc.TxPending)
	assert.Equal(t, txres.Signer, alice.Address())
	assert.Equal(t, txres.Nonce, 1)

	var data transaction.Follow
	assert.NoError(t, json.Unmarshal(txres.Data, &data))
	assert.Equal(t, data.Target, bob.Address())

	addr, err := cl.GetAddress(ctx, daemonrpc.GetAddressRequest{Address: alice.Address()})
	assert.NoError(t, err)
	assert.Equal(t, addr.LastNonce, 0)
	assert.Equal(t, addr.MempoolNonce, 1)

	// following twice is rejected while the first one is pending
	dup, err := alice.Sign(ctx, &transaction.Follow{Target: bob.Address()})
	assert.NoError(t, err)
	_, err = cl.SubmitTransaction(ctx, daemonrpc.SubmitTransactionRequest{Hex: dup.Serialize()})
	assert.Equal(t, rpcCode(t, err), rpc.CodeValidation)

	_, err = cl.SubmitTransaction(ctx, daemonrpc.SubmitTransactionRequest{Hex: []byte{1, 2, 3}})
	assert.Equal(t, rpcCode(t, err), rpc.CodeInvalidParams)

	_, err = bc.ProduceBlock()
	assert.NoError(t, err)

	txres, err = cl.GetTransaction(ctx, daemonrpc.GetTransactionRequest{Txid: res.TXID})
	assert.NoError(t, err)
	assert.Equal(t, txres.Status, daemonrpc.TxIncluded)
	assert.Equal(t, txres.Height, 1)

	addr, err = cl.GetAddress(ctx, daemonrpc.GetAddressRequest{Address: bob.Address()})
	assert.NoError(t, err)
	assert.Equal(t, addr.Followers, 1)

	conns, err := cl.GetConnections(ctx, daemonrpc.GetConnectionsRequest{
		Address:   bob.Address(),
		Direction: daemonrpc.DirectionTo,
	})
	assert.NoError(t, err)
	assert.Equal(t, len(conns.Connections), 1)
	assert.Equal(t, conns.Connections[0].From, alice.Address())
	assert.Equal(t, conns.MaxPage, 0)

	_, err = cl.GetConnections(ctx, daemonrpc.GetConnectionsRequest{
		Address:   bob.Address(),
		Direction: "sideways",
	})
	assert.Equal(t, rpcCode(t, err), rpc.CodeInvalidParams)

	_, err = cl.GetAddress(ctx, daemonrpc.GetAddressRequest{})
	assert.Equal(t, rpcCode(t, err), rpc.CodeInvalidParams)
}

// TestFollowFlow drives the whole follow flow against a running ledger.
func TestFollowFlow(t *testing.T) {
	bc, cl := setup(t)
	produce(t, bc)
	ctx := context.Background()

	viewer := openWallet(t, cl, "viewer")
	target := openWallet(t, cl, "target")
	lc := ledger.New(cl, ledger.Options{PollInterval: 5 * time.Millisecond, Timeout: 10 * time.Second})

	// give the viewer a handle
	tx, err := viewer.Sign(ctx, &transaction.SetHandle{Handle: "viewer", AvatarURL: "https://example.com/v.png"})
	assert.NoError(t, err)
	txid, err := lc.Submit(ctx, tx)
	assert.NoError(t, err)
	assert.NoError(t, lc.Confirm(ctx, txid, ledger.Finalized))

	cache := qcache.New()
	source := follow.NewRPCSource(cl)
	rec := &notify.Recorder{}
	reader := follow.NewReader(cache, source, source)
	writer := follow.NewWriter(cache, lc, viewer, rec)

	view := func() follow.View {
		return follow.Project(
			reader.ConnectionsTo(ctx, target.Address()),
			reader.ConnectionsFrom(ctx, target.Address()),
			viewer.Address(), target.Address(),
		)
	}

	v := view()
	assert.Nil(t, v.Err)
	assert.Equal(t, v.FollowerCount, 0)
	assert.True(t, v.ShowFollow())

	res := writer.Follow(ctx, target.Address())
	assert.NoError(t, res.Err)

	v = view()
	assert.True(t, v.IsFollowing)
	assert.Equal(t, v.FollowerCount, 1)
	assert.Equal(t, v.FollowedBy[0].Text, "viewer")
	assert.Equal(t, v.FollowedBy[0].AvatarURL, "https://example.com/v.png")
	assert.True(t, v.ShowUnfollow())

	// a rejected follow leaves the graph unchanged
	res = writer.Follow(ctx, target.Address())
	assert.That(t, errors.Is(res.Err, ledger.ErrBroadcastRejected))
	assert.Equal(t, view().FollowerCount, 1)

	res = writer.Unfollow(ctx, target.Address())
	assert.NoError(t, res.Err)

	v = view()
	assert.False(t, v.IsFollowing)
	assert.Equal(t, v.FollowerCount, 0)

	assert.Equal(t, rec.Count(notify.Success), 2)
	assert.Equal(t, rec.Count(notify.Failure), 1)
	assert.Equal(t, rec.Count(notify.Info), 2)

	var stats *blockchain.Stats
	assert.NoError(t, bc.DB.View(func(txn adb.Txn) (err error) {
		stats, err = bc.GetStats(txn)
		return
	}))
	assert.Equal(t, stats.Edges, 0)
	assert.Equal(t, stats.Handles, 1)
}

func TestManyFollowers(t *testing.T) {
	bc, cl := setup(t)
	ctx := context.Background()

	target := address.FromPubKey(bitcrypto.GenerateKeypair(blake3.Sum256([]byte("target"))).Public())

	const n = 30
	var followers []address.Address
	for i := range n {
		key := bitcrypto.GenerateKeypair(blake3.Sum256([]byte{byte(i)}))
		tx := transaction.New(key.Public(), &transaction.Follow{Target: target}, 1)
		assert.NoError(t, tx.Sign(key))
		_, err := cl.SubmitTransaction(ctx, daemonrpc.SubmitTransactionRequest{Hex: tx.Serialize()})
		assert.NoError(t, err)
		followers = append(followers, tx.SignerAddress())
	}
	_, err := bc.ProduceBlock()
	assert.NoError(t, err)

	source := follow.NewRPCSource(cl)
	edges, err := source.EdgesTo(ctx, target)
	assert.NoError(t, err)
	assert.Equal(t, len(edges), n)
	for i, e := range edges {
		assert.Equal(t, e.From, followers[i])
	}

	v := follow.Project(follow.ReadyResult(edges), follow.ReadyResult(nil), address.INVALID_ADDRESS, target)
	assert.Equal(t, len(v.FollowedBy), 4)
	assert.Equal(t, v.Others, n-4)
	assert.False(t, v.ShowFollow())
}
