package wallet

import (
	"github.com/virel-project/virel-social/bitcrypto"

	"github.com/tyler-smith/go-bip39"
	"github.com/zeebo/blake3"
)

// seed entropy in bytes
const SEED_ENTROPY = 16

// newMnemonic encodes entropy as a seedphrase and derives its key
func newMnemonic(entropy []byte) (string, bitcrypto.Privkey) {
	seed, err := bip39.NewMnemonic(entropy)
	if err != nil {
		panic(err)
	}

	return seed, bitcrypto.GenerateKeypair(blake3.Sum256(entropy))
}

// decodes a mnemonic seedphrase into a private key
func decodeMnemonic(seed string) (bitcrypto.Privkey, error) {
	entropy, err := bip39.EntropyFromMnemonic(seed)
	if err != nil {
		return bitcrypto.Privkey{}, err
	}

	return bitcrypto.GenerateKeypair(blake3.Sum256(entropy)), nil
}
