package address

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math/big"

	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/util"

	"github.com/zeebo/blake3"
)

const SIZE = 22

// Address identifies a social account. It is derived from the account's public key.
type Address [SIZE]byte

// The zero-value of address is considered invalid
var INVALID_ADDRESS = Address{}

var ErrInvalidPrefix = errors.New("invalid address prefix")
var ErrInvalidAddress = errors.New("invalid address")
var ErrInvalidChecksum = errors.New("invalid address checksum")

func FromPubKey(p bitcrypto.Pubkey) Address {
	// Address is obtained from the hash of the public key
	hash := blake3.Sum256(p[:])

	return Address(hash[:SIZE]) // the first SIZE bytes of the hash are the actual address
}

func FromString(p string) (Address, error) {
	if len(p) < 4 || p[0] != config.WALLET_PREFIX[0] {
		return Address{}, ErrInvalidPrefix
	}

	bigi, success := big.NewInt(0).SetString(p[1:], 36)
	if !success {
		return Address{}, ErrInvalidAddress
	}

	data := bigi.Bytes()
	if len(data) > SIZE+2 {
		return Address{}, ErrInvalidAddress
	}
	// leading zero bytes of the checksum are dropped by the base36 encoding
	data = append(make([]byte, SIZE+2-len(data)), data...)

	sum := checksum(data[2:])
	if data[0] != sum[0] || data[1] != sum[1] {
		return Address{}, ErrInvalidChecksum
	}

	return Address(data[2:]), nil
}

func checksum(a []byte) []byte {
	sum := crc32.ChecksumIEEE(a[:])
	sumb := make([]byte, 2)
	binary.LittleEndian.PutUint16(sumb, uint16(sum&0xffff))
	return sumb
}

func (a Address) String() string {
	return config.WALLET_PREFIX + big.NewInt(0).SetBytes(append(checksum(a[:]), a[:]...)).Text(36)
}

// Short is the abbreviated form used in labels and notifications.
func (a Address) Short() string {
	return util.ShortString(a.String())
}

func (a Address) IsValid() bool {
	return a != INVALID_ADDRESS
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(c []byte) error {
	addr, err := FromString(string(c))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ConnectionAccount is the on-chain account identity of the edge "from follows to".
func ConnectionAccount(from, to Address) util.Hash {
	h := blake3.New()
	h.Write([]byte(config.CONNECTION_ACCOUNT_SEED))
	h.Write(from[:])
	h.Write(to[:])

	var out util.Hash
	copy(out[:], h.Sum(nil))
	return out
}
