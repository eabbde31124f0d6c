// Package bitcrypto wraps the ed25519 keys that sign social transactions and the primitives used to
// encrypt wallet files.
package bitcrypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

const SIGNATURE_SIZE = 64
const PUBKEY_SIZE = 32
const PRIVKEY_SIZE = 32 + PUBKEY_SIZE

type Pubkey [PUBKEY_SIZE]byte
type Privkey [PRIVKEY_SIZE]byte
type Signature [SIGNATURE_SIZE]byte

func (p Privkey) Public() Pubkey {
	return Pubkey(p[32:])
}

// GenerateKeypair deterministically derives a private key from a 32-byte seed
func GenerateKeypair(seed [32]byte) Privkey {
	return Privkey(ed25519.NewKeyFromSeed(seed[:]))
}

func Sign(message []byte, key Privkey) (Signature, error) {
	edk := ed25519.PrivateKey(key[:])

	x, err := edk.Sign(nil, message, crypto.Hash(0))
	if err != nil {
		return Signature{}, err
	}

	if len(x) != SIGNATURE_SIZE {
		panic(fmt.Errorf("signature size: %d, expected: %d", len(x), SIGNATURE_SIZE))
	}

	return Signature(x), nil
}

// returns true if the signature is valid
func VerifySignature(signer Pubkey, data []byte, signature Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(signer[:]), data, signature[:])
}

// RandRead fills b with secure random bytes. A failing system RNG is not recoverable.
func RandRead(b []byte) {
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
}
