package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

type Transaction struct {
	Version uint8

	Signer    bitcrypto.Pubkey    // signer's public key
	Signature bitcrypto.Signature // transaction signature

	Data TransactionData

	Nonce uint64
}

// New returns an unsigned transaction carrying data.
func New(signer bitcrypto.Pubkey, data TransactionData, nonce uint64) *Transaction {
	return &Transaction{
		Version: data.AssociatedTransactionVersion(),
		Signer:  signer,
		Data:    data,
		Nonce:   nonce,
	}
}

func (t Transaction) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 128))

	s.AddUint8(t.Version)

	s.AddFixedByteArray(t.Signer[:])
	s.AddFixedByteArray(t.Signature[:])

	t.Data.Serialize(&s)

	s.AddUvarint(t.Nonce)

	return s.Output()
}
func (t *Transaction) Deserialize(data []byte) error {
	d := binary.NewDes(data)

	t.Version = d.ReadUint8()
	t.Signer = bitcrypto.Pubkey(d.ReadFixedByteArray(bitcrypto.PUBKEY_SIZE))
	t.Signature = bitcrypto.Signature(d.ReadFixedByteArray(bitcrypto.SIGNATURE_SIZE))
	if err := d.Error(); err != nil {
		return err
	}

	var err error
	t.Data, err = newData(t.Version)
	if err != nil {
		return err
	}
	err = t.Data.Deserialize(&d)
	if err != nil {
		return err
	}
	t.Nonce = d.ReadUvarint()

	if err := d.Error(); err != nil {
		return err
	}
	if len(d.RemainingData()) != 0 {
		return fmt.Errorf("transaction has %d trailing bytes", len(d.RemainingData()))
	}
	return nil
}

// Hash is the transaction id.
func (t Transaction) Hash() util.Hash {
	return blake3.Sum256(t.Serialize())
}

func (t Transaction) SignerAddress() address.Address {
	return address.FromPubKey(t.Signer)
}

func (t Transaction) SignatureData() []byte {
	t.Signature = bitcrypto.Signature{}

	return t.Serialize()
}

func (t *Transaction) Sign(pk bitcrypto.Privkey) error {
	sig, err := bitcrypto.Sign(t.SignatureData(), pk)
	if err != nil {
		return errors.Wrap(err, "signing transaction")
	}
	t.Signature = sig
	return nil
}

// Prevalidate executes the verification that does not depend on the ledger state. It should be used
// before blockchain AddTransaction.
func (t *Transaction) Prevalidate() error {
	if t.Data == nil {
		return errors.New("transaction has no data")
	}
	if t.Version != t.Data.AssociatedTransactionVersion() {
		return fmt.Errorf("invalid version %d, expected %d", t.Version, t.Data.AssociatedTransactionVersion())
	}
	if t.Nonce == 0 {
		return errors.New("nonce must be at least 1")
	}

	signer := t.SignerAddress()
	if !signer.IsValid() {
		return errors.New("invalid signer public key")
	}

	if !bitcrypto.VerifySignature(t.Signer, t.SignatureData(), t.Signature) {
		return errors.New("invalid signature")
	}

	return t.Data.Prevalidate(signer)
}

func (t *Transaction) String() string {
	hash := t.Hash()
	o := "Transaction " + hash.String() + "\n"

	o += fmt.Sprintf(" Version: %d\n", t.Version)
	o += " Size: " + util.FormatInt(len(t.Serialize())) + "\n"
	o += " Signer: " + t.SignerAddress().String() + "\n"

	o += t.Data.String()

	o += " Signature: " + hex.EncodeToString(t.Signature[:]) + "\n"
	o += " Nonce: " + util.FormatUint(t.Nonce)

	return o
}
