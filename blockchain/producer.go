package blockchain

import (
	"context"
	"time"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/block"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"
)

// ProduceBlock applies the mempool in order and appends a block on top of the chain. Transactions that
// expired or became invalid are marked as failed and left out of the block. Empty blocks are produced
// too, so that included transactions keep getting deeper.
func (bc *Blockchain) ProduceBlock() (*block.Block, error) {
	var bl *block.Block

	err := bc.DB.Update(func(txn adb.Txn) error {
		stats, err := bc.GetStats(txn)
		if err != nil {
			return err
		}
		mem, err := bc.GetMempool(txn)
		if err != nil {
			return err
		}

		now := bc.now()
		bl = &block.Block{
			BlockHeader: block.BlockHeader{
				Version:   0,
				Height:    stats.TopHeight + 1,
				Timestamp: uint64(now.UnixMilli()),
				PrevHash:  stats.TopHash,
			},
			Transactions: make([]util.Hash, 0, min(len(mem.Entries), config.MAX_TX_PER_BLOCK)),
		}

		remaining := make([]*MempoolEntry, 0)
		for _, v := range mem.Entries {
			if len(bl.Transactions) >= config.MAX_TX_PER_BLOCK {
				remaining = append(remaining, v)
				continue
			}
			if v.Expires < now.Unix() {
				Log.Debugf("mempool transaction %x expired", v.TXID)
				err = bc.failTx(txn, v.TXID, "transaction expired")
				if err != nil {
					return err
				}
				continue
			}

			tx, rec, err := bc.GetTx(txn, v.TXID)
			if err != nil {
				Log.Err(err)
				continue
			}

			err = bc.ApplyTxToState(txn, tx, v.TXID, bl.Height, stats)
			if err != nil {
				Log.Debugf("mempool transaction %x is not valid: %v", v.TXID, err)
				err = bc.failTx(txn, v.TXID, err.Error())
				if err != nil {
					return err
				}
				continue
			}

			rec.Status = TxIncluded
			rec.Height = bl.Height
			err = bc.SetTxRecord(txn, v.TXID, rec)
			if err != nil {
				return err
			}
			bl.Transactions = append(bl.Transactions, v.TXID)
		}

		hash := bl.Hash()
		err = bc.insertBlock(txn, bl, hash)
		if err != nil {
			return err
		}

		mem.Entries = remaining
		err = bc.SetMempool(txn, mem)
		if err != nil {
			return err
		}

		stats.TopHash = hash
		stats.TopHeight = bl.Height
		return bc.SetStats(txn, stats)
	})
	if err != nil {
		return nil, err
	}

	Log.Debugf("Produced block %d with %d transactions", bl.Height, len(bl.Transactions))
	return bl, nil
}

func (bc *Blockchain) failTx(txn adb.Txn, txid util.Hash, reason string) error {
	rec, err := bc.GetTxRecord(txn, txid)
	if err != nil {
		return err
	}
	rec.Status = TxFailed
	rec.Error = reason
	return bc.SetTxRecord(txn, txid, rec)
}

// Run produces a block every interval until ctx is done.
func (bc *Blockchain) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			Log.Info("Block producer stopped")
			return
		case <-ticker.C:
			_, err := bc.ProduceBlock()
			if err != nil {
				Log.Err("failed to produce block:", err)
			}
		}
	}
}

// MempoolTransactions returns the transactions in mempool, in application order.
func (bc *Blockchain) MempoolTransactions() ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction
	err := bc.DB.View(func(txn adb.Txn) error {
		mem, err := bc.GetMempool(txn)
		if err != nil {
			return err
		}
		for _, v := range mem.Entries {
			tx, _, err := bc.GetTx(txn, v.TXID)
			if err != nil {
				return err
			}
			txs = append(txs, tx)
		}
		return nil
	})
	return txs, err
}
