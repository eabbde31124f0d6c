// Package ledger submits transactions to a daemon and waits for them to reach a commitment level.
package ledger

import (
	"context"
	"time"

	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/rpc/daemonrpc"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

var Log = logger.DiscardLog

var ErrBroadcastRejected = errors.New("transaction rejected by the node")
var ErrFinalizationTimeout = errors.New("timed out waiting for transaction finalization")
var ErrFinalizationFailed = errors.New("transaction failed")

type Commitment uint8

const (
	Processed Commitment = iota // known to the node
	Confirmed                   // included in a block
	Finalized                   // included and buried under enough blocks
)

func (c Commitment) String() string {
	switch c {
	case Processed:
		return "processed"
	case Confirmed:
		return "confirmed"
	case Finalized:
		return "finalized"
	}
	return "unknown"
}

// Daemon is the subset of the daemon RPC used by Client. *daemonrpc.RpcClient implements it.
type Daemon interface {
	SubmitTransaction(context.Context, daemonrpc.SubmitTransactionRequest) (*daemonrpc.SubmitTransactionResponse, error)
	GetTransaction(context.Context, daemonrpc.GetTransactionRequest) (*daemonrpc.GetTransactionResponse, error)
	GetInfo(context.Context, daemonrpc.GetInfoRequest) (*daemonrpc.GetInfoResponse, error)
}

type Options struct {
	// PollInterval is the delay between two status checks. Default is config.CONFIRM_POLL_INTERVAL.
	PollInterval time.Duration
	// Timeout bounds a single Confirm call. Default is config.CONFIRM_TIMEOUT.
	Timeout time.Duration
}

type Client struct {
	daemon Daemon
	opts   Options
}

func New(daemon Daemon, opts Options) *Client {
	if opts.PollInterval == 0 {
		opts.PollInterval = config.CONFIRM_POLL_INTERVAL
	}
	if opts.Timeout == 0 {
		opts.Timeout = config.CONFIRM_TIMEOUT
	}
	return &Client{
		daemon: daemon,
		opts:   opts,
	}
}

// Submit broadcasts a signed transaction. Every failure before the node accepts it is
// ErrBroadcastRejected.
func (c *Client) Submit(ctx context.Context, tx *transaction.Transaction) (util.Hash, error) {
	txid := tx.Hash()

	res, err := c.daemon.SubmitTransaction(ctx, daemonrpc.SubmitTransactionRequest{
		Hex: tx.Serialize(),
	})
	if err != nil {
		return txid, errors.Wrapf(ErrBroadcastRejected, "%v", err)
	}
	if res.TXID != txid {
		Log.Warnf("node returned txid %s, expected %s", res.TXID, txid)
	}

	Log.Debugf("submitted transaction %s", txid)
	return txid, nil
}

// Confirm polls the node until txid reaches level. It returns ErrFinalizationFailed when the node
// reports the transaction as failed, ErrFinalizationTimeout when Options.Timeout elapses, or the
// context error when ctx is done first. Transient RPC errors are retried.
func (c *Client) Confirm(ctx context.Context, txid util.Hash, level Commitment) error {
	tctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		done, err := c.check(tctx, txid, level)
		if err != nil {
			if errors.Is(err, ErrFinalizationFailed) {
				return err
			}
			Log.Debugf("checking transaction %s: %v", txid, err)
		}
		if done {
			Log.Debugf("transaction %s is %s", txid, level)
			return nil
		}

		select {
		case <-tctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(ErrFinalizationTimeout, "transaction %s not %s after %s", txid, level, c.opts.Timeout)
		case <-ticker.C:
		}
	}
}

func (c *Client) check(ctx context.Context, txid util.Hash, level Commitment) (bool, error) {
	res, err := c.daemon.GetTransaction(ctx, daemonrpc.GetTransactionRequest{
		Txid: txid,
	})
	if err != nil {
		var rerr *rpc.Error
		if errors.As(err, &rerr) && rerr.Code == rpc.CodeNotFound {
			return false, nil
		}
		return false, err
	}

	switch res.Status {
	case daemonrpc.TxFailed:
		return false, errors.Wrapf(ErrFinalizationFailed, "transaction %s: %s", txid, res.Error)
	case daemonrpc.TxPending:
		return level == Processed, nil
	case daemonrpc.TxIncluded:
		if level != Finalized {
			return true, nil
		}
	default:
		return false, errors.Errorf("unknown transaction status %q", res.Status)
	}

	info, err := c.daemon.GetInfo(ctx, daemonrpc.GetInfoRequest{})
	if err != nil {
		return false, err
	}
	depth := info.FinalityDepth
	if depth == 0 {
		depth = config.FINALITY_DEPTH
	}
	return info.Height >= res.Height && info.Height-res.Height+1 >= depth, nil
}
