package wallet

import (
	"encoding/json"

	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/config"

	"github.com/pkg/errors"
)

var ErrWrongNetwork = errors.New("wallet belongs to another network")

// The wallet file is salt(16) || argon2 time(4) || argon2 memory(4) || AES-GCM(json(dbInfo)).

func (w *Wallet) decodeDatabase(data, pass []byte) error {
	d := binary.NewDes(data)

	salt := d.ReadFixedByteArray(16)
	time := d.ReadUint32()
	mem := d.ReadUint32()

	if d.Error() != nil {
		return errors.Wrap(d.Error(), "wallet file is truncated")
	}

	p := bitcrypto.KDF(pass, salt, time, mem)

	cip, err := bitcrypto.NewCipher(p)
	if err != nil {
		return err
	}

	dec, err := cip.Decrypt(d.RemainingData())
	if err != nil {
		return err
	}

	err = json.Unmarshal(dec, &w.dbInfo)
	if err != nil {
		return errors.Wrap(err, "wallet file is corrupted")
	}
	if w.dbInfo.NetworkID != config.NETWORK_ID {
		return errors.Wrapf(ErrWrongNetwork, "network id %x", w.dbInfo.NetworkID)
	}
	return nil
}

func saveDatabase(dbInfo dbInfo, pass []byte, time, mem uint32) ([]byte, error) {
	s := binary.Ser{}

	salt := genSalt()

	s.AddFixedByteArray(salt[:])
	s.AddUint32(time)
	s.AddUint32(mem)

	p := bitcrypto.KDF(pass, salt[:], time, mem)

	cip, err := bitcrypto.NewCipher(p)
	if err != nil {
		return nil, err
	}

	dbData, err := json.Marshal(dbInfo)
	if err != nil {
		return nil, err
	}

	enc, err := cip.Encrypt(dbData)
	if err != nil {
		return nil, err
	}

	return append(s.Output(), enc...), nil
}

func genSalt() [16]byte {
	var b [16]byte
	bitcrypto.RandRead(b[:])
	return b
}
