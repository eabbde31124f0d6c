//go:build !testnet && !unittest

package config

const RPC_BIND_PORT = 6321
const NETWORK_ID uint64 = 0x8c0e6a3b1f5d2e47 // Network identifier. It MUST be unique for each chain

const NETWORK_NAME = "mainnet"

const EXPLORER_TX_URL = "https://explorer.virel.org/social/tx/"
const AVATAR_URL = "https://virel.org/social/avatars/%d.png"
