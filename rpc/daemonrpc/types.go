package daemonrpc

import (
	"encoding/json"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/block"
	"github.com/virel-project/virel-social/util"
	"github.com/virel-project/virel-social/util/enc"
)

type TxStatus string

const (
	TxPending  TxStatus = "pending"  // in the mempool
	TxIncluded TxStatus = "included" // included in a block
	TxFailed   TxStatus = "failed"   // rejected when applied to a block, or expired
)

type Direction string

const (
	DirectionTo   Direction = "to"   // edges pointing to the address: its followers
	DirectionFrom Direction = "from" // edges starting from the address: who it follows
)

type GetTransactionRequest struct {
	Txid util.Hash `json:"txid"`
}

type GetTransactionResponse struct {
	Signer  address.Address `json:"signer"`
	Version uint8           `json:"version"`
	Data    json.RawMessage `json:"data"`
	Nonce   uint64          `json:"nonce"`
	Height  uint64          `json:"height"` // 0 while not included
	Status  TxStatus        `json:"status"`
	Error   string          `json:"error,omitempty"` // failure reason
}

type GetInfoRequest struct {
}
type GetInfoResponse struct {
	Height          uint64    `json:"height"`
	TopHash         util.Hash `json:"top_hash"`
	FinalityDepth   uint64    `json:"finality_depth"`
	MempoolSize     uint64    `json:"mempool_size"`
	Edges           uint64    `json:"edges"`
	TargetBlockTime int       `json:"target_block_time"`
	Network         string    `json:"network"`
	Version         string    `json:"version"`
}

type GetAddressRequest struct {
	Address address.Address `json:"address"`
}
type GetAddressResponse struct {
	LastNonce    uint64 `json:"last_nonce"`    // last nonce used
	MempoolNonce uint64 `json:"mempool_nonce"` // unconfirmed nonce, from mempool
	Following    uint64 `json:"following"`
	Followers    uint64 `json:"followers"`
	Height       uint64 `json:"height"`
}

type SubmitTransactionRequest struct {
	Hex enc.Hex `json:"hex"` // transaction data as hex string
}
type SubmitTransactionResponse struct {
	TXID util.Hash `json:"txid"`
}

type GetConnectionsRequest struct {
	Address   address.Address `json:"address"`
	Direction Direction       `json:"direction"`
	Page      uint64          `json:"page"`
}
type Connection struct {
	From    address.Address `json:"from"`
	To      address.Address `json:"to"`
	Account util.Hash       `json:"account"`
}
type GetConnectionsResponse struct {
	Connections []Connection `json:"connections"`
	MaxPage     uint64       `json:"max_page"`
}

type GetHandleRequest struct {
	Address address.Address `json:"address"`
}
type GetHandleResponse struct {
	Handle    string `json:"handle"` // empty when the address has no handle
	AvatarURL string `json:"avatar_url"`
}

type GetBlockByHeightRequest struct {
	Height uint64 `json:"height"`
}
type GetBlockResponse struct {
	Block block.Block `json:"block"`
	Hash  util.Hash   `json:"hash"`
}
