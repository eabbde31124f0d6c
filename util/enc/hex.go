// Package enc holds byte slices which are hex strings on the wire.
package enc

import (
	"encoding/hex"
	"errors"
)

type Hex []byte

func (h Hex) String() string {
	return hex.EncodeToString(h)
}

func (h *Hex) UnmarshalText(c []byte) error {
	dst := make([]byte, hex.DecodedLen(len(c)))
	n, err := hex.Decode(dst, c)
	if err != nil {
		return err
	}
	*h = dst[:n]
	return nil
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(h) + `"`), nil
}

func (h *Hex) UnmarshalJSON(c []byte) error {
	if len(c) < 2 {
		return errors.New("hex value is too short to be a valid string")
	}
	if c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("hex value is not a valid string literal")
	}
	return h.UnmarshalText(c[1 : len(c)-1])
}
