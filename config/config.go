package config

import "time"

const NAME = "virel-social"

const VERSION_MAJOR = 1
const VERSION_MINOR = 2
const VERSION_PATCH = 0

const TARGET_BLOCK_TIME = 5 // seconds between two blocks produced by the ledger

// A transaction is considered finalized once FINALITY_DEPTH blocks (including its own) are on top of
// the chain. Lower commitment levels only require the transaction to be known or included.
const FINALITY_DEPTH = 3

const MEMPOOL_EXPIRATION = 10 * time.Minute

const MAX_TX_PER_BLOCK = 1_000

const MAX_HANDLE_LENGTH = 32
const MAX_AVATAR_URL_LENGTH = 256

const CONNECTIONS_PAGE_SIZE = 25 // number of edges returned by a single get_connections call

// number of followers shown in the "followed by" preview of a profile
const FOLLOWED_BY_PREVIEW = 4

const CONFIRM_POLL_INTERVAL = time.Second
const CONFIRM_TIMEOUT = 90 * time.Second

const AVATAR_COUNT = 8

const UPDATE_CHECK_URL = "https://api.github.com/repos/virel-project/virel-social/releases/latest"
