package blockchain

import (
	"fmt"

	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/util"
)

// State is the ledger state of an address.
type State struct {
	LastNonce uint64
	Following uint64
	Followers uint64
	// next sequence numbers of the out and in indices; they only increase, so that an ordered scan
	// returns edges in creation order
	OutSeq uint64
	InSeq  uint64
}

func (x State) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 10))

	s.AddUvarint(x.LastNonce)
	s.AddUvarint(x.Following)
	s.AddUvarint(x.Followers)
	s.AddUvarint(x.OutSeq)
	s.AddUvarint(x.InSeq)

	return s.Output()
}

func (x *State) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	x.LastNonce = s.ReadUvarint()
	x.Following = s.ReadUvarint()
	x.Followers = s.ReadUvarint()
	x.OutSeq = s.ReadUvarint()
	x.InSeq = s.ReadUvarint()

	return s.Error()
}

func (x State) String() string {
	return fmt.Sprintf("LastNonce: %d; Following: %d; Followers: %d", x.LastNonce, x.Following, x.Followers)
}

// EdgeRecord is stored in the edge index under from||to.
type EdgeRecord struct {
	Account util.Hash
	Height  uint64 // height of the block that created the edge
	OutSeq  uint64 // key of the edge in the out index of from
	InSeq   uint64 // key of the edge in the in index of to
}

func (e EdgeRecord) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 48))

	s.AddFixedByteArray(e.Account[:])
	s.AddUvarint(e.Height)
	s.AddUvarint(e.OutSeq)
	s.AddUvarint(e.InSeq)

	return s.Output()
}

func (e *EdgeRecord) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	e.Account = util.Hash(s.ReadFixedByteArray(32))
	e.Height = s.ReadUvarint()
	e.OutSeq = s.ReadUvarint()
	e.InSeq = s.ReadUvarint()

	return s.Error()
}

type HandleRecord struct {
	Handle    string
	AvatarURL string
}

func (h HandleRecord) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, len(h.Handle)+len(h.AvatarURL)+2))

	s.AddString(h.Handle)
	s.AddString(h.AvatarURL)

	return s.Output()
}

func (h *HandleRecord) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	h.Handle = s.ReadString()
	h.AvatarURL = s.ReadString()

	return s.Error()
}

type TxStatus uint8

const (
	TxPending TxStatus = iota
	TxIncluded
	TxFailed
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxIncluded:
		return "included"
	case TxFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown status %d", uint8(s))
	}
}

// TxRecord is stored in the tx index under the transaction id.
type TxRecord struct {
	Status TxStatus
	Height uint64 // 0 unless included
	Error  string // failure reason
	Tx     []byte // serialized transaction
}

func (r TxRecord) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 16+len(r.Error)+len(r.Tx)))

	s.AddUint8(uint8(r.Status))
	s.AddUvarint(r.Height)
	s.AddString(r.Error)
	s.AddByteSlice(r.Tx)

	return s.Output()
}

func (r *TxRecord) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	r.Status = TxStatus(s.ReadUint8())
	r.Height = s.ReadUvarint()
	r.Error = s.ReadString()
	r.Tx = s.ReadByteSlice()

	return s.Error()
}
