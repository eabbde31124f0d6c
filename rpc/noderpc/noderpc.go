// Package noderpc serves the ledger over the daemon JSON-RPC API.
package noderpc

import (
	"encoding/json"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/block"
	"github.com/virel-project/virel-social/blockchain"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/rpc/daemonrpc"
	"github.com/virel-project/virel-social/rpc/rpcserver"
	"github.com/virel-project/virel-social/transaction"

	"github.com/pkg/errors"
)

var Log = logger.DiscardLog

// Register adds the daemon methods to rs.
func Register(rs *rpcserver.Server, bc *blockchain.Blockchain) {
	rs.Handle("get_info", func(c *rpcserver.Context) {
		var stats *blockchain.Stats
		var mem *blockchain.Mempool
		err := bc.DB.View(func(txn adb.Txn) (err error) {
			stats, err = bc.GetStats(txn)
			if err != nil {
				return err
			}
			mem, err = bc.GetMempool(txn)
			return err
		})
		if err != nil {
			readFailed(c, err, "failed to read ledger stats")
			return
		}

		c.SuccessResponse(daemonrpc.GetInfoResponse{
			Height:          stats.TopHeight,
			TopHash:         stats.TopHash,
			FinalityDepth:   config.FINALITY_DEPTH,
			MempoolSize:     uint64(len(mem.Entries)),
			Edges:           stats.Edges,
			TargetBlockTime: config.TARGET_BLOCK_TIME,
			Network:         config.NETWORK_NAME,
			Version:         config.VersionString(),
		})
	})

	rs.Handle("get_address", func(c *rpcserver.Context) {
		params := daemonrpc.GetAddressRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}
		if !params.Address.IsValid() {
			invalidParams(c, "invalid address")
			return
		}

		result := daemonrpc.GetAddressResponse{}
		err = bc.DB.View(func(txn adb.Txn) error {
			state, err := bc.GetState(txn, params.Address)
			if err != nil {
				return err
			}
			stats, err := bc.GetStats(txn)
			if err != nil {
				return err
			}
			mem, err := bc.GetMempool(txn)
			if err != nil {
				return err
			}

			result.LastNonce = state.LastNonce
			result.MempoolNonce = state.LastNonce
			result.Following = state.Following
			result.Followers = state.Followers
			result.Height = stats.TopHeight

			for _, v := range mem.Entries {
				if v.Signer == params.Address {
					result.MempoolNonce = max(result.MempoolNonce, v.Nonce)
				}
			}
			return nil
		})
		if err != nil {
			readFailed(c, err, "failed to read address state")
			return
		}

		c.SuccessResponse(result)
	})

	rs.Handle("submit_transaction", func(c *rpcserver.Context) {
		params := daemonrpc.SubmitTransactionRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}

		Log.Devf("submit_transaction hex: %x", params.Hex)

		tx := &transaction.Transaction{}
		err = tx.Deserialize(params.Hex)
		if err != nil {
			Log.Debug(err)
			invalidParams(c, "invalid transaction hex data")
			return
		}

		txid, err := bc.AddTransaction(tx)
		if err != nil {
			Log.Debugf("transaction %x rejected: %v", txid, err)
			c.ErrorResponse(&rpc.Error{
				Code:    rpc.CodeValidation,
				Message: "transaction verification failed: " + err.Error(),
			})
			return
		}

		c.SuccessResponse(daemonrpc.SubmitTransactionResponse{
			TXID: txid,
		})
	})

	rs.Handle("get_transaction", func(c *rpcserver.Context) {
		params := daemonrpc.GetTransactionRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}

		var tx *transaction.Transaction
		var rec *blockchain.TxRecord
		err = bc.DB.View(func(txn adb.Txn) (err error) {
			tx, rec, err = bc.GetTx(txn, params.Txid)
			return
		})
		if err != nil {
			if errors.Is(err, blockchain.ErrTxNotFound) {
				notFound(c, "transaction not found")
				return
			}
			readFailed(c, err, "failed to read transaction")
			return
		}

		data, err := json.Marshal(tx.Data)
		if err != nil {
			readFailed(c, err, "failed to encode transaction data")
			return
		}

		c.SuccessResponse(daemonrpc.GetTransactionResponse{
			Signer:  tx.SignerAddress(),
			Version: tx.Version,
			Data:    data,
			Nonce:   tx.Nonce,
			Height:  rec.Height,
			Status:  txStatus(rec.Status),
			Error:   rec.Error,
		})
	})

	rs.Handle("get_connections", func(c *rpcserver.Context) {
		params := daemonrpc.GetConnectionsRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}
		if !params.Address.IsValid() {
			invalidParams(c, "invalid address")
			return
		}

		var dir blockchain.Direction
		switch params.Direction {
		case daemonrpc.DirectionTo:
			dir = blockchain.DirectionTo
		case daemonrpc.DirectionFrom:
			dir = blockchain.DirectionFrom
		default:
			invalidParams(c, "direction must be \"to\" or \"from\"")
			return
		}

		var list []blockchain.Connection
		var maxPage uint64
		err = bc.DB.View(func(txn adb.Txn) (err error) {
			list, maxPage, err = bc.GetConnections(txn, params.Address, dir, params.Page)
			return
		})
		if err != nil {
			readFailed(c, err, "failed to read connections")
			return
		}

		result := daemonrpc.GetConnectionsResponse{
			Connections: make([]daemonrpc.Connection, len(list)),
			MaxPage:     maxPage,
		}
		for i, v := range list {
			result.Connections[i] = daemonrpc.Connection{
				From:    v.From,
				To:      v.To,
				Account: v.Account,
			}
		}
		c.SuccessResponse(result)
	})

	rs.Handle("get_handle", func(c *rpcserver.Context) {
		params := daemonrpc.GetHandleRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}
		if !params.Address.IsValid() {
			invalidParams(c, "invalid address")
			return
		}

		var h *blockchain.HandleRecord
		err = bc.DB.View(func(txn adb.Txn) (err error) {
			h, err = bc.GetHandle(txn, params.Address)
			return
		})
		if err != nil {
			readFailed(c, err, "failed to read handle")
			return
		}

		result := daemonrpc.GetHandleResponse{}
		if h != nil {
			result.Handle = h.Handle
			result.AvatarURL = h.AvatarURL
		}
		c.SuccessResponse(result)
	})

	rs.Handle("get_block_by_height", func(c *rpcserver.Context) {
		params := daemonrpc.GetBlockByHeightRequest{}
		err := c.GetParams(&params)
		if err != nil {
			return
		}

		var bl *block.Block
		err = bc.DB.View(func(txn adb.Txn) (err error) {
			bl, err = bc.GetBlockByHeight(txn, params.Height)
			return
		})
		if err != nil {
			if errors.Is(err, blockchain.ErrBlockNotFound) {
				notFound(c, "block not found")
				return
			}
			readFailed(c, err, "failed to read block")
			return
		}

		c.SuccessResponse(daemonrpc.GetBlockResponse{
			Block: *bl,
			Hash:  bl.Hash(),
		})
	})
}

func txStatus(s blockchain.TxStatus) daemonrpc.TxStatus {
	switch s {
	case blockchain.TxIncluded:
		return daemonrpc.TxIncluded
	case blockchain.TxFailed:
		return daemonrpc.TxFailed
	default:
		return daemonrpc.TxPending
	}
}

func invalidParams(c *rpcserver.Context, msg string) {
	c.ErrorResponse(&rpc.Error{
		Code:    rpc.CodeInvalidParams,
		Message: msg,
	})
}

func notFound(c *rpcserver.Context, msg string) {
	c.ErrorResponse(&rpc.Error{
		Code:    rpc.CodeNotFound,
		Message: msg,
	})
}

func readFailed(c *rpcserver.Context, err error, msg string) {
	Log.Warn(msg+":", err)
	c.ErrorResponse(&rpc.Error{
		Code:    rpc.CodeReadFailed,
		Message: msg,
	})
}

