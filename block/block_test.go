package block

import (
	"reflect"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/blake3"

	"github.com/virel-project/virel-social/util"
)

var sampleBlock = Block{
	BlockHeader: BlockHeader{
		Version:   0,
		Height:    12,
		Timestamp: 1_760_000_000_000,
		PrevHash:  blake3.Sum256([]byte("prev")),
	},
	Transactions: []util.Hash{
		blake3.Sum256([]byte("tx1")),
		blake3.Sum256([]byte("tx2")),
	},
}

func TestBlock(t *testing.T) {
	bl := sampleBlock
	bl2 := Block{}

	ser := bl.Serialize()

	t.Logf("ser: %x", ser)

	assert.NoError(t, bl2.Deserialize(ser))

	t.Logf("bl: %s\nbl2: %s", bl.String(), bl2.String())

	if bl2.Hash() != bl.Hash() {
		t.Fatal("the two blocks are not equal")
	}
	if !reflect.DeepEqual(bl, bl2) {
		t.Fatal("deserialized block differs")
	}
}

func TestBlockEmpty(t *testing.T) {
	bl := Block{}
	bl2 := Block{}
	assert.NoError(t, bl2.Deserialize(bl.Serialize()))
	assert.Equal(t, len(bl2.Transactions), 0)
	assert.Equal(t, bl.Hash(), bl2.Hash())
}

func TestBlockTruncated(t *testing.T) {
	ser := sampleBlock.Serialize()
	for _, n := range []int{0, 3, 20, len(ser) - 1} {
		bl := Block{}
		assert.Error(t, bl.Deserialize(ser[:n]))
	}
}

func TestBlockHashChanges(t *testing.T) {
	bl := sampleBlock
	bl.Transactions = []util.Hash{sampleBlock.Transactions[1], sampleBlock.Transactions[0]}
	assert.NotEqual(t, bl.Hash(), sampleBlock.Hash())
}
