//go:build testnet

package config

const RPC_BIND_PORT = 16321
const NETWORK_ID uint64 = 0x27d34c90ab61e05f // Network identifier. It MUST be unique for each chain

const NETWORK_NAME = "testnet"

const EXPLORER_TX_URL = "https://testnet-explorer.virel.org/social/tx/"
const AVATAR_URL = "https://virel.org/social/avatars/%d.png"
