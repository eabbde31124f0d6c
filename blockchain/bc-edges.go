package blockchain

import (
	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

type Direction uint8

const (
	DirectionTo   Direction = iota // edges pointing to the address
	DirectionFrom                  // edges starting from the address
)

type Connection struct {
	From    address.Address
	To      address.Address
	Account util.Hash
}

// GetConnections returns a page of the edges of addr in creation order, and the index of the last page.
func (bc *Blockchain) GetConnections(txn adb.Txn, addr address.Address, dir Direction, page uint64) ([]Connection, uint64, error) {
	state, err := bc.GetState(txn, addr)
	if err != nil {
		return nil, 0, err
	}

	index := bc.Index.In
	count := state.Followers
	if dir == DirectionFrom {
		index = bc.Index.Out
		count = state.Following
	}

	var maxPage uint64
	if count > 0 {
		maxPage = (count - 1) / config.CONNECTIONS_PAGE_SIZE
	}

	skip := page * config.CONNECTIONS_PAGE_SIZE
	list := make([]Connection, 0, min(count, config.CONNECTIONS_PAGE_SIZE))

	err = txn.ForEachPrefix(index, addr[:], func(k, v []byte) (bool, error) {
		if skip > 0 {
			skip--
			return false, nil
		}
		if len(v) != address.SIZE {
			return true, errors.Errorf("invalid edge index value %x", v)
		}
		other := address.Address(v)

		c := Connection{From: other, To: addr}
		if dir == DirectionFrom {
			c = Connection{From: addr, To: other}
		}
		rec, err := bc.GetEdge(txn, c.From, c.To)
		if err != nil {
			return true, err
		}
		if rec == nil {
			return true, errors.Errorf("edge %s -> %s is indexed but missing", c.From, c.To)
		}
		c.Account = rec.Account

		list = append(list, c)
		return len(list) >= config.CONNECTIONS_PAGE_SIZE, nil
	})

	return list, maxPage, err
}
