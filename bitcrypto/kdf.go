package bitcrypto

import (
	"golang.org/x/crypto/argon2"
)

// KDF derives a 32-byte key from a password with argon2id. mem is expressed in KiB.
func KDF(pass, salt []byte, time, mem uint32) [32]byte {
	return [32]byte(argon2.IDKey(pass, salt, time, mem, 1, 32))
}
