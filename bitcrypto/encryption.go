package bitcrypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
)

var ErrDecrypt = errors.New("decryption failed: wrong password or corrupted data")

type Cipher struct {
	gcm cipher.AEAD
}

// Uses AES-256-GCM under the hood. The random nonce is prepended to the ciphertext.
func NewCipher(key [32]byte) (Cipher, error) {
	cip, err := aes.NewCipher(key[:])
	if err != nil {
		return Cipher{}, err
	}

	aead, err := cipher.NewGCM(cip)
	if err != nil {
		return Cipher{}, err
	}

	return Cipher{
		gcm: aead,
	}, nil
}

func (c *Cipher) Encrypt(data []byte) ([]byte, error) {
	if data == nil {
		return nil, errors.New("Encrypt: data cannot be nil")
	}
	if c.gcm == nil {
		return nil, errors.New("gcm is nil")
	}

	nonce := make([]byte, c.gcm.NonceSize())
	RandRead(nonce)

	return c.gcm.Seal(nonce, nonce, data, nil), nil
}

func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("encrypted data is too short")
	}
	nonce, data := data[:nonceSize], data[nonceSize:]

	msg, err := c.gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return msg, nil
}
