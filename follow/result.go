package follow

import (
	"github.com/virel-project/virel-social/qcache"
	"github.com/virel-project/virel-social/util"
)

type State = qcache.State

const (
	Loading = qcache.Loading
	Error   = qcache.Error
	Ready   = qcache.Ready
)

// Result is the state of an edge set query.
type Result struct {
	state State
	edges []Edge
	err   error
}

func ReadyResult(edges []Edge) Result {
	return Result{state: Ready, edges: edges}
}
func ErrorResult(err error) Result {
	return Result{state: Error, err: err}
}
func LoadingResult() Result {
	return Result{state: Loading}
}

func (r Result) State() State {
	return r.state
}

// Edges is nil unless the state is Ready.
func (r Result) Edges() []Edge {
	return r.edges
}

func (r Result) Err() error {
	return r.err
}

// WriteResult is the outcome of a follow or unfollow.
type WriteResult struct {
	TXID util.Hash
	Err  error
}

func (w WriteResult) OK() bool {
	return w.Err == nil
}
