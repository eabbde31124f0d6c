// Package follow synchronizes the follow graph: it reads edges through a query cache, writes follow
// and unfollow intents to the ledger, and projects the edges into a profile view.
package follow

import (
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/util"
)

var Log = logger.DiscardLog

// Edge means From follows To.
type Edge struct {
	From    address.Address `json:"from"`
	To      address.Address `json:"to"`
	Account util.Hash       `json:"account"` // on-chain account of the edge

	// Handles of the two ends, nil when the address has none or the lookup failed. The Pending flags
	// are set while the lookup is still running (only from Peek).
	FromHandle  *Handle `json:"from_handle,omitempty"`
	ToHandle    *Handle `json:"to_handle,omitempty"`
	FromPending bool    `json:"-"`
	ToPending   bool    `json:"-"`
}

type Handle struct {
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url"`
}

type Direction uint8

const (
	To   Direction = iota // edges pointing to the address: followers
	From                  // edges starting from the address: following
)

func (d Direction) String() string {
	if d == From {
		return "from"
	}
	return "to"
}

type pair struct {
	from, to address.Address
}

// dedup drops the edges whose (From, To) was already seen, keeping the order.
func dedup(edges []Edge) []Edge {
	seen := make(map[pair]struct{}, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		k := pair{e.From, e.To}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
