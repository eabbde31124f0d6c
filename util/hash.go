package util

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Hash is a blake3 digest: transaction ids, block hashes and connection accounts.
type Hash [32]byte

func (m Hash) String() string {
	return hex.EncodeToString(m[:])
}

func (m Hash) IsZero() bool {
	return m == Hash{}
}

func HashFromString(s string) (Hash, error) {
	var h Hash
	return h, h.UnmarshalText([]byte(s))
}

func (m *Hash) UnmarshalText(c []byte) error {
	if len(c) != 64 {
		return errors.New("invalid length")
	}
	if !IsHex(string(c)) {
		return errors.New("invalid hex")
	}
	_, err := hex.Decode(m[:], c)
	return err
}

func (m Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
func (m *Hash) UnmarshalJSON(c []byte) error {
	if len(c) == 2 {
		*m = Hash{}
		return nil
	} else if len(c) != 66 {
		return errors.New("invalid hex length")
	}

	if c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("invalid string literal")
	}

	return m.UnmarshalText(c[1 : len(c)-1])
}

func (m Hash) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, m.String())
}
