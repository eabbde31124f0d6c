package blockchain

import (
	"bytes"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

var ErrInvalidNonce = errors.New("invalid nonce")
var ErrAlreadyFollowing = errors.New("already following")
var ErrNotFollowing = errors.New("not following")
var ErrHandleTaken = errors.New("handle is already taken")
var ErrMempoolFull = errors.New("mempool is full")

// AddTransaction validates a transaction against the ledger state and the transactions already in
// mempool, then queues it. Submitting a pending or included transaction again is a no-op.
func (bc *Blockchain) AddTransaction(tx *transaction.Transaction) (util.Hash, error) {
	hash := tx.Hash()

	err := tx.Prevalidate()
	if err != nil {
		return hash, err
	}

	err = bc.DB.Update(func(txn adb.Txn) error {
		if rec, err := bc.GetTxRecord(txn, hash); err == nil {
			if rec.Status == TxFailed {
				return errors.Errorf("transaction %x already failed: %s", hash, rec.Error)
			}
			Log.Debug("transaction is already in database")
			return nil
		}

		mem, err := bc.GetMempool(txn)
		if err != nil {
			return err
		}
		if len(mem.Entries) >= config.MAX_TX_PER_BLOCK*4 {
			return ErrMempoolFull
		}

		err = bc.validateMempoolTx(txn, tx, mem)
		if err != nil {
			return err
		}

		err = bc.SetTxRecord(txn, hash, &TxRecord{
			Status: TxPending,
			Tx:     tx.Serialize(),
		})
		if err != nil {
			return err
		}

		expires := bc.now().Add(config.MEMPOOL_EXPIRATION).Unix()
		mem.Entries = append(mem.Entries, newMempoolEntry(tx, hash, expires))

		return bc.SetMempool(txn, mem)
	})
	if err != nil {
		Log.Debugf("transaction %x rejected: %v", hash, err)
		return hash, err
	}

	Log.Debugf("Added transaction %x to mempool", hash)
	return hash, nil
}

// validateMempoolTx checks tx as if every transaction in mempool had already been applied.
func (bc *Blockchain) validateMempoolTx(txn adb.Txn, tx *transaction.Transaction, mem *Mempool) error {
	signer := tx.SignerAddress()

	state, err := bc.GetState(txn, signer)
	if err != nil {
		return err
	}

	var target = signer
	switch data := tx.Data.(type) {
	case *transaction.Follow:
		target = data.Target
	case *transaction.Unfollow:
		target = data.Target
	}

	lastNonce, exists := mem.pending(signer, target, bc.edgeExists(txn, signer, target))
	lastNonce = max(lastNonce, state.LastNonce)

	if tx.Nonce != lastNonce+1 {
		return errors.Wrapf(ErrInvalidNonce, "got %d, expected %d", tx.Nonce, lastNonce+1)
	}

	switch data := tx.Data.(type) {
	case *transaction.Follow:
		if exists {
			return errors.Wrapf(ErrAlreadyFollowing, "%s", data.Target)
		}
	case *transaction.Unfollow:
		if !exists {
			return errors.Wrapf(ErrNotFollowing, "%s", data.Target)
		}
	case *transaction.SetHandle:
		return bc.checkHandleAvailable(txn, signer, data.Handle)
	}
	return nil
}

// GetTxRecord returns the stored transaction record. Its Tx field is a copy and can be kept after the
// database transaction ends.
func (bc *Blockchain) GetTxRecord(txn adb.Txn, hash util.Hash) (*TxRecord, error) {
	bin := txn.Get(bc.Index.Tx, hash[:])
	if len(bin) == 0 {
		return nil, errors.Wrapf(ErrTxNotFound, "transaction %x", hash)
	}
	rec := &TxRecord{}
	err := rec.Deserialize(bin)
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %x record", hash)
	}
	rec.Tx = bytes.Clone(rec.Tx)
	return rec, nil
}

func (bc *Blockchain) SetTxRecord(txn adb.Txn, hash util.Hash, rec *TxRecord) error {
	return txn.Put(bc.Index.Tx, hash[:], rec.Serialize())
}

// GetTx returns the transaction given its hash, with its record.
func (bc *Blockchain) GetTx(txn adb.Txn, hash util.Hash) (*transaction.Transaction, *TxRecord, error) {
	rec, err := bc.GetTxRecord(txn, hash)
	if err != nil {
		return nil, nil, err
	}
	tx := &transaction.Transaction{}
	err = tx.Deserialize(rec.Tx)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "transaction %x", hash)
	}
	return tx, rec, nil
}
