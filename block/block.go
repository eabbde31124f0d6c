package block

import (
	"fmt"
	"strconv"
	"time"

	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/util"

	"github.com/zeebo/blake3"
)

type BlockHeader struct {
	Version   uint8     `json:"version"` // starts at 0
	Height    uint64    `json:"height"`
	Timestamp uint64    `json:"timestamp"` // milliseconds since the unix epoch
	PrevHash  util.Hash `json:"prev_hash"` // zero for the genesis block
}

type Block struct {
	BlockHeader `json:"header"`

	Transactions []util.Hash `json:"transactions"` // transactions applied by this block, in order
}

func (b Block) String() string {
	hash := b.Hash()

	var x string

	x += "Block " + hash.String() + "\n"
	x += "Version: " + strconv.FormatUint(uint64(b.Version), 10) + "\n"
	x += "Height: " + strconv.FormatUint(b.Height, 10) + "\n"
	x += "Timestamp: " + strconv.FormatUint(b.Timestamp, 10) + " (" + b.Time().UTC().Format(time.RFC3339) + ")\n"
	x += "Previous hash: " + b.PrevHash.String() + "\n"
	x += "Transactions: " + strconv.FormatUint(uint64(len(b.Transactions)), 10) + "\n"
	for _, v := range b.Transactions {
		x += fmt.Sprintf(" - %s\n", v)
	}

	return x
}

func (b BlockHeader) Time() time.Time {
	return time.UnixMilli(int64(b.Timestamp))
}

func (b BlockHeader) Serialize(s *binary.Ser) {
	s.AddUint8(b.Version)
	s.AddUvarint(b.Height)
	s.AddUvarint(b.Timestamp)
	s.AddFixedByteArray(b.PrevHash[:])
}
func (b *BlockHeader) Deserialize(d *binary.Des) error {
	b.Version = d.ReadUint8()
	b.Height = d.ReadUvarint()
	b.Timestamp = d.ReadUvarint()
	b.PrevHash = util.Hash(d.ReadFixedByteArray(32))

	return d.Error()
}

func (b Block) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 64+32*len(b.Transactions)))

	b.BlockHeader.Serialize(&s)

	s.AddUvarint(uint64(len(b.Transactions)))
	for _, v := range b.Transactions {
		s.AddFixedByteArray(v[:])
	}

	return s.Output()
}
func (b *Block) Deserialize(data []byte) error {
	d := binary.NewDes(data)

	err := b.BlockHeader.Deserialize(&d)
	if err != nil {
		return err
	}

	numTx := d.ReadUvarint()
	if d.Error() != nil {
		return d.Error()
	}
	if numTx > config.MAX_TX_PER_BLOCK {
		return fmt.Errorf("block has too many transactions: %d, max: %d", numTx, config.MAX_TX_PER_BLOCK)
	}
	b.Transactions = make([]util.Hash, numTx)
	for i := range b.Transactions {
		b.Transactions[i] = util.Hash(d.ReadFixedByteArray(32))
	}

	return d.Error()
}

func (b Block) Hash() util.Hash {
	return blake3.Sum256(b.Serialize())
}
