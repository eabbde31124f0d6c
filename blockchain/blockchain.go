// Package blockchain is the development social ledger: a single producer chain which owns the follow
// edges and the handle registry.
package blockchain

import (
	"time"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/block"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

var Log = logger.DiscardLog

var ErrTxNotFound = errors.New("transaction not found")
var ErrBlockNotFound = errors.New("block not found")

// Blockchain represents the ledger. Every write goes through a single DB.Update, which serializes them.
type Blockchain struct {
	DB    adb.DB
	Index Index

	// now is used for block timestamps and mempool expiration
	now func() time.Time
}
type Index struct {
	Info    adb.Index
	Block   adb.Index // hash -> block
	Topo    adb.Index // height -> hash
	State   adb.Index // address -> State
	Tx      adb.Index // txid -> TxRecord
	Edge    adb.Index // from||to -> EdgeRecord
	In      adb.Index // to||seq -> from
	Out     adb.Index // from||seq -> to
	Handle  adb.Index // 'a'||address -> HandleRecord, 'n'||handle -> address
	Mempool adb.Index
}

func New(db adb.DB) (*Blockchain, error) {
	bc := &Blockchain{
		DB:  db,
		now: time.Now,
	}

	bc.Index = Index{
		Info:    bc.DB.Index("info"),
		Block:   bc.DB.Index("block"),
		Topo:    bc.DB.Index("topo"),
		State:   bc.DB.Index("state"),
		Tx:      bc.DB.Index("tx"),
		Edge:    bc.DB.Index("edge"),
		In:      bc.DB.Index("in"),
		Out:     bc.DB.Index("out"),
		Handle:  bc.DB.Index("handle"),
		Mempool: bc.DB.Index("mempool"),
	}

	// add genesis block if it doesn't exist
	err := bc.addGenesis()
	if err != nil {
		return nil, err
	}

	var stats *Stats
	var mempool *Mempool
	err = bc.DB.View(func(txn adb.Txn) (err error) {
		stats, err = bc.GetStats(txn)
		if err != nil {
			return err
		}
		mempool, err = bc.GetMempool(txn)
		return err
	})
	if err != nil {
		return nil, err
	}

	Log.Info("Started ledger")
	Log.Infof("Height: %d", stats.TopHeight)
	Log.Infof("Top hash: %x", stats.TopHash)
	Log.Infof("Edges: %d, handles: %d", stats.Edges, stats.Handles)
	Log.Debugf("Mempool: %d transactions", len(mempool.Entries))

	return bc, nil
}

// SetClock replaces the clock used for block timestamps and mempool expiration.
func (bc *Blockchain) SetClock(now func() time.Time) {
	bc.now = now
}

func (bc *Blockchain) Close() error {
	Log.Info("Closing ledger database")
	return bc.DB.Close()
}

func (bc *Blockchain) addGenesis() error {
	return bc.DB.Update(func(txn adb.Txn) error {
		if len(txn.Get(bc.Index.Info, []byte("stats"))) != 0 {
			return nil
		}

		genesis := &block.Block{
			BlockHeader: block.BlockHeader{
				Version:   0,
				Height:    0,
				Timestamp: 0,
			},
			Transactions: []util.Hash{},
		}
		hash := genesis.Hash()

		Log.Infof("Adding genesis block %x", hash)

		err := bc.insertBlock(txn, genesis, hash)
		if err != nil {
			return err
		}

		err = bc.SetMempool(txn, &Mempool{
			Entries: make([]*MempoolEntry, 0),
		})
		if err != nil {
			return err
		}

		return bc.SetStats(txn, &Stats{
			TopHash:   hash,
			TopHeight: 0,
		})
	})
}

func (bc *Blockchain) GetStats(txn adb.Txn) (*Stats, error) {
	d := txn.Get(bc.Index.Info, []byte("stats"))
	if len(d) == 0 {
		return nil, errors.New("stats are empty")
	}

	s, err := DeserializeStats(d)
	return s, errors.Wrap(err, "stats are corrupted")
}

func (bc *Blockchain) SetStats(txn adb.Txn, s *Stats) error {
	return txn.Put(bc.Index.Info, []byte("stats"), s.Serialize())
}

func (bc *Blockchain) GetMempool(txn adb.Txn) (*Mempool, error) {
	s, err := DeserializeMempool(txn.Get(bc.Index.Mempool, []byte("mempool")))
	return s, errors.Wrap(err, "mempool is corrupted")
}

func (bc *Blockchain) SetMempool(txn adb.Txn, s *Mempool) error {
	return txn.Put(bc.Index.Mempool, []byte("mempool"), s.Serialize())
}

func (bc *Blockchain) GetState(txn adb.Txn, addr address.Address) (*State, error) {
	state := &State{}
	d := txn.Get(bc.Index.State, addr[:])
	if len(d) == 0 {
		return state, nil
	}
	return state, state.Deserialize(d)
}

func (bc *Blockchain) SetState(txn adb.Txn, addr address.Address, state *State) error {
	return txn.Put(bc.Index.State, addr[:], state.Serialize())
}

// insertBlock stores a block and makes it the block at its height.
func (bc *Blockchain) insertBlock(txn adb.Txn, bl *block.Block, hash util.Hash) error {
	err := txn.Put(bc.Index.Block, hash[:], bl.Serialize())
	if err != nil {
		return err
	}
	return txn.Put(bc.Index.Topo, util.U64KeyBytes(bl.Height), hash[:])
}

// GetBlock returns the block given its hash
func (bc *Blockchain) GetBlock(txn adb.Txn, hash util.Hash) (*block.Block, error) {
	bl := &block.Block{}
	blbin := txn.Get(bc.Index.Block, hash[:])
	if len(blbin) == 0 {
		return bl, errors.Wrapf(ErrBlockNotFound, "block %x", hash)
	}
	err := bl.Deserialize(blbin)
	return bl, err
}

func (bc *Blockchain) GetTopo(txn adb.Txn, height uint64) (util.Hash, error) {
	topoHash := txn.Get(bc.Index.Topo, util.U64KeyBytes(height))
	if len(topoHash) != 32 {
		return util.Hash{}, errors.Wrapf(ErrBlockNotFound, "height %d", height)
	}
	return util.Hash(topoHash), nil
}

func (bc *Blockchain) GetBlockByHeight(txn adb.Txn, height uint64) (*block.Block, error) {
	hash, err := bc.GetTopo(txn, height)
	if err != nil {
		return nil, err
	}
	return bc.GetBlock(txn, hash)
}

// IsFinalized reports whether a transaction included at height is final when the top block is at top.
func IsFinalized(height, top uint64) bool {
	return height != 0 && top >= height && top-height+1 >= config.FINALITY_DEPTH
}
