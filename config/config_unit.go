//go:build !testnet && unittest

package config

const RPC_BIND_PORT = 16391
const NETWORK_ID uint64 = 0x1 // Network identifier. It MUST be unique for each chain

const NETWORK_NAME = "unittest"

const EXPLORER_TX_URL = "http://127.0.0.1/tx/"
const AVATAR_URL = "http://127.0.0.1/avatars/%d.png"
