package blockchain

import (
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"
)

type Stats struct {
	TopHash   util.Hash
	TopHeight uint64
	Edges     uint64 // number of follow edges
	Handles   uint64 // number of registered handles
}

func (s *Stats) Serialize() []byte {
	ser := binary.NewSer(make([]byte, 0, 48))

	ser.AddFixedByteArray(s.TopHash[:])
	ser.AddUvarint(s.TopHeight)
	ser.AddUvarint(s.Edges)
	ser.AddUvarint(s.Handles)

	return ser.Output()
}

func DeserializeStats(d []byte) (*Stats, error) {
	des := binary.NewDes(d)

	s := &Stats{
		TopHash:   util.Hash(des.ReadFixedByteArray(32)),
		TopHeight: des.ReadUvarint(),
		Edges:     des.ReadUvarint(),
		Handles:   des.ReadUvarint(),
	}

	return s, des.Error()
}

type Mempool struct {
	Entries []*MempoolEntry
}

// MempoolEntry keeps what is needed to validate later transactions of the same signer without reading
// the transaction itself.
type MempoolEntry struct {
	TXID    util.Hash
	Expires int64 // UNIX seconds
	Signer  address.Address
	Nonce   uint64
	Version uint8
	Target  address.Address // follow and unfollow only
}

func (s *Mempool) Serialize() []byte {
	ser := binary.NewSer(make([]byte, 0, 8+len(s.Entries)*96))

	ser.AddUvarint(uint64(len(s.Entries)))
	for _, v := range s.Entries {
		ser.AddFixedByteArray(v.TXID[:])
		ser.AddUint64(uint64(v.Expires))
		ser.AddFixedByteArray(v.Signer[:])
		ser.AddUvarint(v.Nonce)
		ser.AddUint8(v.Version)
		ser.AddFixedByteArray(v.Target[:])
	}

	return ser.Output()
}

func DeserializeMempool(d []byte) (*Mempool, error) {
	s := &Mempool{
		Entries: make([]*MempoolEntry, 0),
	}
	if len(d) == 0 {
		return s, nil
	}

	des := binary.NewDes(d)

	n := des.ReadUvarint()
	for i := uint64(0); i < n && des.Error() == nil; i++ {
		s.Entries = append(s.Entries, &MempoolEntry{
			TXID:    util.Hash(des.ReadFixedByteArray(32)),
			Expires: int64(des.ReadUint64()),
			Signer:  address.Address(des.ReadFixedByteArray(address.SIZE)),
			Nonce:   des.ReadUvarint(),
			Version: des.ReadUint8(),
			Target:  address.Address(des.ReadFixedByteArray(address.SIZE)),
		})
	}

	return s, des.Error()
}

func newMempoolEntry(tx *transaction.Transaction, hash util.Hash, expires int64) *MempoolEntry {
	e := &MempoolEntry{
		TXID:    hash,
		Expires: expires,
		Signer:  tx.SignerAddress(),
		Nonce:   tx.Nonce,
		Version: tx.Version,
	}
	switch data := tx.Data.(type) {
	case *transaction.Follow:
		e.Target = data.Target
	case *transaction.Unfollow:
		e.Target = data.Target
	}
	return e
}

func (m *Mempool) GetEntry(hash util.Hash) *MempoolEntry {
	for _, v := range m.Entries {
		if v.TXID == hash {
			return v
		}
	}
	return nil
}

func (m *Mempool) DeleteEntry(hash util.Hash) {
	for i, v := range m.Entries {
		if v.TXID == hash {
			Log.Debugf("Removing transaction %x from mempool", v.TXID)
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return
		}
	}
}

// pending returns the nonce of the last transaction of signer in mempool (0 if there are none), and
// whether the edge signer -> target exists once the entries in mempool are applied.
func (m *Mempool) pending(signer, target address.Address, edgeExists bool) (lastNonce uint64, exists bool) {
	exists = edgeExists
	for _, v := range m.Entries {
		if v.Signer != signer {
			continue
		}
		lastNonce = max(lastNonce, v.Nonce)
		if v.Target != target {
			continue
		}
		switch v.Version {
		case transaction.TX_VERSION_FOLLOW:
			exists = true
		case transaction.TX_VERSION_UNFOLLOW:
			exists = false
		}
	}
	return
}
