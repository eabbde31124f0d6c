package transaction

import (
	"fmt"
	"strconv"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/binary"
	"github.com/virel-project/virel-social/config"

	"github.com/pkg/errors"
)

const TX_VERSION_FOLLOW uint8 = 1
const TX_VERSION_UNFOLLOW uint8 = 2
const TX_VERSION_SET_HANDLE uint8 = 3

var ErrSelfRelation = errors.New("an address cannot follow or unfollow itself")

// TransactionData is implemented by Follow, Unfollow and SetHandle only.
type TransactionData interface {
	AssociatedTransactionVersion() uint8
	Serialize(s *binary.Ser)
	Deserialize(d *binary.Des) error
	String() string
	// Prevalidate checks the data without looking at the ledger state.
	Prevalidate(signer address.Address) error

	isTransactionData()
}

// TransactionData: Follow

type Follow struct {
	Target address.Address `json:"target"`
}

func (t *Follow) AssociatedTransactionVersion() uint8 {
	return TX_VERSION_FOLLOW
}
func (t *Follow) Serialize(s *binary.Ser) {
	s.AddFixedByteArray(t.Target[:])
}
func (t *Follow) Deserialize(d *binary.Des) error {
	t.Target = address.Address(d.ReadFixedByteArray(address.SIZE))
	return d.Error()
}
func (t *Follow) String() string {
	return " Follow: " + t.Target.String() + "\n"
}
func (t *Follow) Prevalidate(signer address.Address) error {
	return validateTarget(signer, t.Target)
}
func (*Follow) isTransactionData() {}

// TransactionData: Unfollow

type Unfollow struct {
	Target address.Address `json:"target"`
}

func (t *Unfollow) AssociatedTransactionVersion() uint8 {
	return TX_VERSION_UNFOLLOW
}
func (t *Unfollow) Serialize(s *binary.Ser) {
	s.AddFixedByteArray(t.Target[:])
}
func (t *Unfollow) Deserialize(d *binary.Des) error {
	t.Target = address.Address(d.ReadFixedByteArray(address.SIZE))
	return d.Error()
}
func (t *Unfollow) String() string {
	return " Unfollow: " + t.Target.String() + "\n"
}
func (t *Unfollow) Prevalidate(signer address.Address) error {
	return validateTarget(signer, t.Target)
}
func (*Unfollow) isTransactionData() {}

func validateTarget(signer, target address.Address) error {
	if !target.IsValid() {
		return errors.New("invalid target address")
	}
	if signer == target {
		return ErrSelfRelation
	}
	return nil
}

// TransactionData: SetHandle

// SetHandle links a handle and an avatar to the signer. An empty handle removes the link.
type SetHandle struct {
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url"`
}

func (t *SetHandle) AssociatedTransactionVersion() uint8 {
	return TX_VERSION_SET_HANDLE
}
func (t *SetHandle) Serialize(s *binary.Ser) {
	s.AddString(t.Handle)
	s.AddString(t.AvatarURL)
}
func (t *SetHandle) Deserialize(d *binary.Des) error {
	t.Handle = d.ReadString()
	t.AvatarURL = d.ReadString()
	return d.Error()
}
func (t *SetHandle) String() string {
	return " SetHandle: " + strconv.Quote(t.Handle) + " avatar: " + strconv.Quote(t.AvatarURL) + "\n"
}
func (t *SetHandle) Prevalidate(address.Address) error {
	if len(t.Handle) > config.MAX_HANDLE_LENGTH {
		return fmt.Errorf("handle is too long: %d > %d", len(t.Handle), config.MAX_HANDLE_LENGTH)
	}
	for _, c := range t.Handle {
		if !validHandleChar(c) {
			return fmt.Errorf("invalid character %q in handle", c)
		}
	}
	if t.Handle == "" && t.AvatarURL != "" {
		return errors.New("avatar requires a handle")
	}
	if len(t.AvatarURL) > config.MAX_AVATAR_URL_LENGTH {
		return fmt.Errorf("avatar url is too long: %d > %d", len(t.AvatarURL), config.MAX_AVATAR_URL_LENGTH)
	}
	for _, c := range t.AvatarURL {
		if c <= ' ' || c == 0x7f {
			return errors.New("avatar url contains whitespace or control characters")
		}
	}
	return nil
}
func (*SetHandle) isTransactionData() {}

func validHandleChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '-' || c == '.'
}

func newData(version uint8) (TransactionData, error) {
	switch version {
	case TX_VERSION_FOLLOW:
		return &Follow{}, nil
	case TX_VERSION_UNFOLLOW:
		return &Unfollow{}, nil
	case TX_VERSION_SET_HANDLE:
		return &SetHandle{}, nil
	default:
		return nil, fmt.Errorf("unknown transaction version %d", version)
	}
}
