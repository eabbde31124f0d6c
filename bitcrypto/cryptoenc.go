package bitcrypto

import (
	"encoding/base64"
	"errors"
)

func (m Privkey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.StdEncoding.EncodeToString(m[:]) + `"`), nil
}
func (m *Privkey) UnmarshalJSON(c []byte) error {
	if len(c) < 2 {
		return errors.New("value is too short")
	} else if len(c) == 2 {
		*m = Privkey{}
		return nil
	}

	if c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("invalid string literal")
	}

	dec, err := base64.StdEncoding.DecodeString(string(c[1 : len(c)-1]))
	if err != nil {
		return err
	}
	if len(dec) != PRIVKEY_SIZE {
		return errors.New("invalid privkey data length")
	}

	*m = Privkey(dec)
	return nil
}
