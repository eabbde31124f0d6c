package config

import (
	"encoding/binary"
	"fmt"
)

// This file holds advanced config options. You shouldn't edit these options unless you really know what you
// are doing.

const WALLET_PREFIX = "v"

// Prefix of the data hashed to obtain the account identity of a connection.
const CONNECTION_ACCOUNT_SEED = "connection"

const VERSION = VERSION_MAJOR<<32 + VERSION_MINOR<<16 + VERSION_PATCH

var BinaryNetworkID = make([]byte, 8)

func init() {
	binary.LittleEndian.PutUint64(BinaryNetworkID, NETWORK_ID)
}

func VersionString() string {
	return fmt.Sprintf("%d.%d.%d", VERSION_MAJOR, VERSION_MINOR, VERSION_PATCH)
}

// TxExplorerURL returns the explorer page of a transaction
func TxExplorerURL(txid string) string {
	return EXPLORER_TX_URL + txid
}

// AvatarURL returns the URL of the n-th default avatar
func AvatarURL(n int) string {
	return fmt.Sprintf(AVATAR_URL, n%AVATAR_COUNT)
}
