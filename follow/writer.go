package follow

import (
	"context"
	"time"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/notify"
	"github.com/virel-project/virel-social/qcache"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

// Writer submits follow and unfollow intents of the signer and waits for their finalization.
// Calls for the same pair are not serialized: callers must not start a write before the previous one
// returned.
type Writer struct {
	cache    *qcache.Cache
	ledger   Ledger
	signer   Signer
	notifier notify.Notifier
}

func NewWriter(cache *qcache.Cache, l Ledger, signer Signer, notifier notify.Notifier) *Writer {
	return &Writer{
		cache:    cache,
		ledger:   l,
		signer:   signer,
		notifier: notifier,
	}
}

// Follow makes the signer follow target. It returns once the transaction is finalized, or failed.
func (w *Writer) Follow(ctx context.Context, target address.Address) WriteResult {
	return w.write(ctx, target, &transaction.Follow{Target: target}, "follow", "Followed")
}

// Unfollow removes the edge from the signer to target.
func (w *Writer) Unfollow(ctx context.Context, target address.Address) WriteResult {
	return w.write(ctx, target, &transaction.Unfollow{Target: target}, "unfollow", "Unfollowed")
}

func (w *Writer) write(ctx context.Context, target address.Address, data transaction.TransactionData,
	verb, done string) WriteResult {
	txid, err := w.submit(ctx, target, data, verb)
	if err != nil {
		Log.Warnf("%s %s failed: %v", verb, target, err)
		w.notify(notify.Failure, "Unable to "+verb+", try again later.", "")
		return WriteResult{TXID: txid, Err: err}
	}

	w.cache.InvalidateAll()

	w.notify(notify.Success, done+": "+target.Short()+", TX: "+util.ShortString(txid.String()),
		config.TxExplorerURL(txid.String()))
	return WriteResult{TXID: txid}
}

func (w *Writer) submit(ctx context.Context, target address.Address, data transaction.TransactionData,
	verb string) (util.Hash, error) {
	if target == w.signer.Address() {
		return util.Hash{}, ErrSelfConnection
	}

	tx, err := w.signer.Sign(ctx, data)
	if err != nil {
		return util.Hash{}, errors.Wrap(err, "signing transaction")
	}

	txid, err := w.ledger.Submit(ctx, tx)
	if err != nil {
		return util.Hash{}, err
	}
	Log.Debugf("submitted %s %s: transaction %s", verb, target, txid)

	w.notify(notify.Info, "Confirming transaction: "+util.ShortString(txid.String()), config.TxExplorerURL(txid.String()))

	return txid, w.ledger.Confirm(ctx, txid, ledger.Finalized)
}

func (w *Writer) notify(kind notify.Kind, msg, link string) {
	if w.notifier == nil {
		return
	}
	w.notifier.Notify(notify.Notification{
		Kind:    kind,
		Message: msg,
		Link:    link,
		Time:    time.Now(),
	})
}
