package blockchain

import (
	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

// ApplyTxToState validates tx against the current state and applies it. Nothing is written when an
// error is returned.
func (bc *Blockchain) ApplyTxToState(txn adb.Txn, tx *transaction.Transaction, txid util.Hash, height uint64, stats *Stats) error {
	signer := tx.SignerAddress()

	state, err := bc.GetState(txn, signer)
	if err != nil {
		return err
	}
	if tx.Nonce != state.LastNonce+1 {
		return errors.Wrapf(ErrInvalidNonce, "got %d, expected %d", tx.Nonce, state.LastNonce+1)
	}

	switch data := tx.Data.(type) {
	case *transaction.Follow:
		if bc.edgeExists(txn, signer, data.Target) {
			return errors.Wrapf(ErrAlreadyFollowing, "%s", data.Target)
		}
		err = bc.addEdge(txn, signer, data.Target, height, stats)
	case *transaction.Unfollow:
		if !bc.edgeExists(txn, signer, data.Target) {
			return errors.Wrapf(ErrNotFollowing, "%s", data.Target)
		}
		err = bc.removeEdge(txn, signer, data.Target, stats)
	case *transaction.SetHandle:
		err = bc.checkHandleAvailable(txn, signer, data.Handle)
		if err != nil {
			return err
		}
		err = bc.setHandle(txn, signer, data, stats)
	default:
		return errors.Errorf("unknown transaction data %T", tx.Data)
	}
	if err != nil {
		return err
	}

	// the edge functions update the signer state, read it again before bumping the nonce
	state, err = bc.GetState(txn, signer)
	if err != nil {
		return err
	}
	state.LastNonce = tx.Nonce

	Log.Devf("applied transaction %x by %s at height %d", txid, signer, height)

	return bc.SetState(txn, signer, state)
}

func edgeKey(from, to address.Address) []byte {
	return append(append(make([]byte, 0, 2*address.SIZE), from[:]...), to[:]...)
}
func seqKey(addr address.Address, seq uint64) []byte {
	return append(append(make([]byte, 0, address.SIZE+8), addr[:]...), util.U64KeyBytes(seq)...)
}

func (bc *Blockchain) edgeExists(txn adb.Txn, from, to address.Address) bool {
	return len(txn.Get(bc.Index.Edge, edgeKey(from, to))) != 0
}

// GetEdge returns the record of the edge "from follows to", or nil if there is no such edge.
func (bc *Blockchain) GetEdge(txn adb.Txn, from, to address.Address) (*EdgeRecord, error) {
	d := txn.Get(bc.Index.Edge, edgeKey(from, to))
	if len(d) == 0 {
		return nil, nil
	}
	e := &EdgeRecord{}
	return e, e.Deserialize(d)
}

func (bc *Blockchain) addEdge(txn adb.Txn, from, to address.Address, height uint64, stats *Stats) error {
	fromState, err := bc.GetState(txn, from)
	if err != nil {
		return err
	}
	toState, err := bc.GetState(txn, to)
	if err != nil {
		return err
	}

	rec := EdgeRecord{
		Account: address.ConnectionAccount(from, to),
		Height:  height,
		OutSeq:  fromState.OutSeq,
		InSeq:   toState.InSeq,
	}
	fromState.OutSeq++
	fromState.Following++
	toState.InSeq++
	toState.Followers++

	err = txn.Put(bc.Index.Edge, edgeKey(from, to), rec.Serialize())
	if err != nil {
		return err
	}
	err = txn.Put(bc.Index.Out, seqKey(from, rec.OutSeq), to[:])
	if err != nil {
		return err
	}
	err = txn.Put(bc.Index.In, seqKey(to, rec.InSeq), from[:])
	if err != nil {
		return err
	}
	err = bc.SetState(txn, from, fromState)
	if err != nil {
		return err
	}
	stats.Edges++
	return bc.SetState(txn, to, toState)
}

func (bc *Blockchain) removeEdge(txn adb.Txn, from, to address.Address, stats *Stats) error {
	rec, err := bc.GetEdge(txn, from, to)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(ErrNotFollowing, "%s", to)
	}

	fromState, err := bc.GetState(txn, from)
	if err != nil {
		return err
	}
	toState, err := bc.GetState(txn, to)
	if err != nil {
		return err
	}
	fromState.Following--
	toState.Followers--

	err = txn.Del(bc.Index.Edge, edgeKey(from, to))
	if err != nil {
		return err
	}
	err = txn.Del(bc.Index.Out, seqKey(from, rec.OutSeq))
	if err != nil {
		return err
	}
	err = txn.Del(bc.Index.In, seqKey(to, rec.InSeq))
	if err != nil {
		return err
	}
	err = bc.SetState(txn, from, fromState)
	if err != nil {
		return err
	}
	stats.Edges--
	return bc.SetState(txn, to, toState)
}

func handleAddrKey(addr address.Address) []byte {
	return append([]byte{'a'}, addr[:]...)
}
func handleNameKey(handle string) []byte {
	return append([]byte{'n'}, normalizeHandle(handle)...)
}

// handles are unique regardless of case
func normalizeHandle(handle string) []byte {
	b := []byte(handle)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return b
}

// GetHandle returns the handle of addr, or nil if it has none.
func (bc *Blockchain) GetHandle(txn adb.Txn, addr address.Address) (*HandleRecord, error) {
	d := txn.Get(bc.Index.Handle, handleAddrKey(addr))
	if len(d) == 0 {
		return nil, nil
	}
	h := &HandleRecord{}
	return h, h.Deserialize(d)
}

func (bc *Blockchain) checkHandleAvailable(txn adb.Txn, signer address.Address, handle string) error {
	if handle == "" {
		return nil
	}
	owner := txn.Get(bc.Index.Handle, handleNameKey(handle))
	if len(owner) != 0 && address.Address(owner) != signer {
		return errors.Wrapf(ErrHandleTaken, "%q", handle)
	}
	return nil
}

func (bc *Blockchain) setHandle(txn adb.Txn, signer address.Address, data *transaction.SetHandle, stats *Stats) error {
	old, err := bc.GetHandle(txn, signer)
	if err != nil {
		return err
	}
	if old != nil {
		err = txn.Del(bc.Index.Handle, handleNameKey(old.Handle))
		if err != nil {
			return err
		}
		stats.Handles--
	}

	if data.Handle == "" {
		return txn.Del(bc.Index.Handle, handleAddrKey(signer))
	}

	rec := HandleRecord{
		Handle:    data.Handle,
		AvatarURL: data.AvatarURL,
	}
	err = txn.Put(bc.Index.Handle, handleAddrKey(signer), rec.Serialize())
	if err != nil {
		return err
	}
	stats.Handles++
	return txn.Put(bc.Index.Handle, handleNameKey(data.Handle), signer[:])
}
