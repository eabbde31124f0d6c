package address_test

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/bitcrypto"
	"github.com/zeebo/blake3"
)

func TestAddress(t *testing.T) {
	pk := bitcrypto.Pubkey(blake3.Sum256([]byte("test")))

	x := address.FromPubKey(pk)

	str := x.String()
	t.Log(str)

	if str != "v7xxb13ng6gzd3tugb8nqzx28btuq0ihkhqxm6" {
		t.Error("address is not valid")
	}

	x2, err := address.FromString(str)
	if err != nil {
		t.Fatal(err)
	}
	if x != x2 {
		t.Error("address does not match")
	}
	if x.Short() != "v7xx...qxm6" {
		t.Error("unexpected short address", x.Short())
	}
}

func TestAddressRandom(t *testing.T) {
	for i := 0; i < 200; i++ {
		r := make([]byte, address.SIZE)
		rand.Read(r)
		// exercise leading zero bytes in the checksum and the address
		if i%3 == 0 {
			r[0] = 0
		}
		a := address.Address(r)
		b, err := address.FromString(a.String())
		if err != nil {
			t.Fatal(a.String(), err)
		}
		if a != b {
			t.Fatalf("address %v and %v not matching", a, b)
		}
	}
}

func TestAddressInvalid(t *testing.T) {
	for _, s := range []string{"", "v", "x7xxb13ng6gzd3tugb8nqzx28btuq0ihkhqxm6", "v7xxb13ng6gzd3tugb8nqzx28btuq0ihkhqxm7", "v!!!!"} {
		if _, err := address.FromString(s); err == nil {
			t.Errorf("address %q should be invalid", s)
		}
	}
}

func TestAddressJSON(t *testing.T) {
	a := address.FromPubKey(bitcrypto.Pubkey(blake3.Sum256([]byte("json"))))

	b, err := json.Marshal(map[string]address.Address{"a": a})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]address.Address
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["a"] != a {
		t.Fatal("address changed after JSON round trip")
	}
}

func TestConnectionAccount(t *testing.T) {
	a := address.FromPubKey(bitcrypto.Pubkey(blake3.Sum256([]byte("a"))))
	b := address.FromPubKey(bitcrypto.Pubkey(blake3.Sum256([]byte("b"))))

	if address.ConnectionAccount(a, b) == address.ConnectionAccount(b, a) {
		t.Fatal("connection account must depend on the direction")
	}
	if address.ConnectionAccount(a, b) != address.ConnectionAccount(a, b) {
		t.Fatal("connection account must be deterministic")
	}
}
