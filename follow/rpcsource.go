package follow

import (
	"context"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/rpc/daemonrpc"

	"github.com/pkg/errors"
)

// Daemon is the subset of the daemon RPC used by RPCSource. *daemonrpc.RpcClient implements it.
type Daemon interface {
	GetConnections(context.Context, daemonrpc.GetConnectionsRequest) (*daemonrpc.GetConnectionsResponse, error)
	GetHandle(context.Context, daemonrpc.GetHandleRequest) (*daemonrpc.GetHandleResponse, error)
}

// RPCSource reads edges and handles from a daemon.
type RPCSource struct {
	daemon Daemon
}

var _ EdgeSource = (*RPCSource)(nil)
var _ HandleResolver = (*RPCSource)(nil)

func NewRPCSource(daemon Daemon) *RPCSource {
	return &RPCSource{daemon: daemon}
}

func (s *RPCSource) EdgesTo(ctx context.Context, addr address.Address) ([]Edge, error) {
	return s.edges(ctx, addr, daemonrpc.DirectionTo)
}

func (s *RPCSource) EdgesFrom(ctx context.Context, addr address.Address) ([]Edge, error) {
	return s.edges(ctx, addr, daemonrpc.DirectionFrom)
}

// edges reads every page. Pages are not a snapshot: an edge created meanwhile can show up twice, the
// reader removes duplicates.
func (s *RPCSource) edges(ctx context.Context, addr address.Address, dir daemonrpc.Direction) ([]Edge, error) {
	var edges []Edge
	for page := uint64(0); ; page++ {
		res, err := s.daemon.GetConnections(ctx, daemonrpc.GetConnectionsRequest{
			Address:   addr,
			Direction: dir,
			Page:      page,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "get_connections %s %s page %d", dir, addr, page)
		}
		for _, c := range res.Connections {
			edges = append(edges, Edge{
				From:    c.From,
				To:      c.To,
				Account: c.Account,
			})
		}
		if page >= res.MaxPage {
			return edges, nil
		}
	}
}

func (s *RPCSource) ResolveHandle(ctx context.Context, addr address.Address) (*Handle, error) {
	res, err := s.daemon.GetHandle(ctx, daemonrpc.GetHandleRequest{
		Address: addr,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get_handle %s", addr)
	}
	if res.Handle == "" {
		return nil, nil
	}
	return &Handle{
		Handle:    res.Handle,
		AvatarURL: res.AvatarURL,
	}, nil
}
