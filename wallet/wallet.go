// Package wallet keeps the key of a social account in an encrypted file and signs its transactions.
package wallet

import (
	"context"
	"os"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/rpc/daemonrpc"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

var Log = logger.DiscardLog

var ErrWalletExists = errors.New("wallet already exists")

// Daemon is the subset of the daemon RPC used by the wallet. *daemonrpc.RpcClient implements it.
type Daemon interface {
	GetAddress(context.Context, daemonrpc.GetAddressRequest) (*daemonrpc.GetAddressResponse, error)
}

// Wallet is safe for concurrent use, but Sign takes the nonce from the daemon mempool: a transaction
// must be submitted before the next one is signed.
type Wallet struct {
	dbInfo dbInfo

	rpc Daemon

	mut          util.Mutex
	height       uint64
	lastNonce    uint64
	mempoolNonce uint64
	following    uint64
	followers    uint64
}

type dbInfo struct {
	NetworkID  uint64
	Mnemonic   string
	PrivateKey bitcrypto.Privkey
	Address    address.Address
}

const (
	kdfMemory     uint32 = 6 * 1024
	kdfIterations uint32 = 512

	fastKdfMemory     uint32 = 2 * 1024
	fastKdfIterations uint32 = 128
)

func kdfParams(fastkdf bool) (time, mem uint32) {
	if fastkdf {
		return fastKdfIterations, fastKdfMemory
	}
	return kdfIterations, kdfMemory
}

func OpenWallet(daemon Daemon, walletdb, pass []byte) (*Wallet, error) {
	w := &Wallet{
		rpc: daemon,
	}

	return w, w.decodeDatabase(walletdb, pass)
}

func OpenWalletFile(daemon Daemon, filename string, pass []byte) (*Wallet, error) {
	walletdb, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return OpenWallet(daemon, walletdb, pass)
}

// CreateWallet generates a new seedphrase. It returns the wallet and its encrypted database.
func CreateWallet(daemon Daemon, pass []byte, fastkdf bool) (*Wallet, []byte, error) {
	entropy := make([]byte, SEED_ENTROPY)
	bitcrypto.RandRead(entropy)

	mnemonic, key := newMnemonic(entropy)
	return newWallet(daemon, mnemonic, key, pass, fastkdf)
}

func CreateWalletFromMnemonic(daemon Daemon, mnemonic string, pass []byte, fastkdf bool) (*Wallet, []byte, error) {
	key, err := decodeMnemonic(mnemonic)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid mnemonic")
	}
	return newWallet(daemon, mnemonic, key, pass, fastkdf)
}

func newWallet(daemon Daemon, mnemonic string, key bitcrypto.Privkey, pass []byte, fastkdf bool) (*Wallet, []byte, error) {
	w := &Wallet{
		rpc: daemon,
		dbInfo: dbInfo{
			NetworkID:  config.NETWORK_ID,
			Mnemonic:   mnemonic,
			PrivateKey: key,
			Address:    address.FromPubKey(key.Public()),
		},
	}

	time, mem := kdfParams(fastkdf)
	dbEnc, err := saveDatabase(w.dbInfo, pass, time, mem)
	if err != nil {
		return nil, nil, err
	}
	return w, dbEnc, nil
}

func CreateWalletFile(daemon Daemon, filename string, pass []byte) (*Wallet, error) {
	return createFile(filename, func() (*Wallet, []byte, error) {
		return CreateWallet(daemon, pass, false)
	})
}

func CreateWalletFileFromMnemonic(daemon Daemon, filename, mnemonic string, pass []byte) (*Wallet, error) {
	return createFile(filename, func() (*Wallet, []byte, error) {
		return CreateWalletFromMnemonic(daemon, mnemonic, pass, false)
	})
}

func createFile(filename string, create func() (*Wallet, []byte, error)) (*Wallet, error) {
	_, err := os.Lstat(filename)
	if err == nil {
		return nil, errors.Wrap(ErrWalletExists, filename)
	}

	wall, dbEnc, err := create()
	if err != nil {
		return nil, err
	}
	err = os.WriteFile(filename, dbEnc, 0o600)
	return wall, err
}

// Refresh reads the account state from the daemon.
func (w *Wallet) Refresh(ctx context.Context) error {
	if w.rpc == nil {
		return errors.New("wallet has no daemon")
	}

	res, err := w.rpc.GetAddress(ctx, daemonrpc.GetAddressRequest{
		Address: w.dbInfo.Address,
	})
	if err != nil {
		return errors.Wrap(err, "get_address")
	}

	w.mut.Lock()
	defer w.mut.Unlock()

	w.height = res.Height
	w.lastNonce = res.LastNonce
	w.mempoolNonce = res.MempoolNonce
	w.following = res.Following
	w.followers = res.Followers
	return nil
}

func (w *Wallet) GetAddress() address.Address {
	return w.dbInfo.Address
}

// Address is the same as GetAddress.
func (w *Wallet) Address() address.Address {
	return w.dbInfo.Address
}

func (w *Wallet) GetMnemonic() string {
	return w.dbInfo.Mnemonic
}
func (w *Wallet) GetHeight() uint64 {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.height
}
func (w *Wallet) GetLastNonce() uint64 {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.lastNonce
}
func (w *Wallet) GetMempoolLastNonce() uint64 {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.mempoolNonce
}
func (w *Wallet) GetFollowing() uint64 {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.following
}
func (w *Wallet) GetFollowers() uint64 {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.followers
}

// Sign refreshes the account nonce, then builds and signs a transaction carrying data. It doesn't
// submit the transaction.
func (w *Wallet) Sign(ctx context.Context, data transaction.TransactionData) (*transaction.Transaction, error) {
	err := w.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return w.SignNonce(data, w.GetMempoolLastNonce()+1)
}

// SignNonce signs data with an explicit nonce, without contacting the daemon.
func (w *Wallet) SignNonce(data transaction.TransactionData, nonce uint64) (*transaction.Transaction, error) {
	tx := transaction.New(w.dbInfo.PrivateKey.Public(), data, nonce)

	err := tx.Sign(w.dbInfo.PrivateKey)
	if err != nil {
		return nil, err
	}
	err = tx.Prevalidate()
	if err != nil {
		return nil, err
	}

	Log.Debugf("signed transaction %x with nonce %d", tx.Hash(), nonce)
	return tx, nil
}
