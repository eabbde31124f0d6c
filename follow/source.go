package follow

import (
	"context"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

var ErrFetch = errors.New("unable to fetch connections")
var ErrSelfConnection = errors.New("cannot follow or unfollow yourself")

// EdgeSource lists the edges of an address, in creation order.
type EdgeSource interface {
	EdgesTo(ctx context.Context, addr address.Address) ([]Edge, error)
	EdgesFrom(ctx context.Context, addr address.Address) ([]Edge, error)
}

// HandleResolver returns the handle of an address, or nil without error when it has none.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, addr address.Address) (*Handle, error)
}

// Ledger is implemented by *ledger.Client.
type Ledger interface {
	Submit(ctx context.Context, tx *transaction.Transaction) (util.Hash, error)
	Confirm(ctx context.Context, txid util.Hash, level ledger.Commitment) error
}

// Signer turns transaction data into a signed transaction of the viewer.
type Signer interface {
	Address() address.Address
	Sign(ctx context.Context, data transaction.TransactionData) (*transaction.Transaction, error)
}
