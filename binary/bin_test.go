package binary

import (
	"bytes"
	"testing"
)

func BenchmarkBinary(b *testing.B) {
	s := NewSer(make([]byte, b.N*4))

	n := uint64(b.N)
	for i := uint64(0); i < n; i++ {
		s.AddUvarint(i)
	}

	d := NewDes(s.Output())

	for i := uint64(0); i < n; i++ {
		d.ReadUvarint()
	}

	if d.Error() != nil {
		b.Fatal(d.err)
	}
}

func TestSerDes(t *testing.T) {
	s := NewSer(nil)
	s.AddUint8(7)
	s.AddUint32(1 << 20)
	s.AddUint64(1 << 40)
	s.AddUvarint(300)
	s.AddFixedByteArray([]byte{1, 2, 3})
	s.AddString("handle")
	s.AddBool(true)
	s.AddBool(false)

	d := NewDes(s.Output())
	if d.ReadUint8() != 7 || d.ReadUint32() != 1<<20 || d.ReadUint64() != 1<<40 || d.ReadUvarint() != 300 {
		t.Fatal("integer mismatch")
	}
	if !bytes.Equal(d.ReadFixedByteArray(3), []byte{1, 2, 3}) {
		t.Fatal("fixed array mismatch")
	}
	if d.ReadString() != "handle" {
		t.Fatal("string mismatch")
	}
	if !d.ReadBool() || d.ReadBool() {
		t.Fatal("bool mismatch")
	}
	if d.Error() != nil {
		t.Fatal(d.Error())
	}
	if len(d.RemainingData()) != 0 {
		t.Fatal("unexpected remaining data")
	}
}

func TestDesShortInput(t *testing.T) {
	s := NewSer(nil)
	s.AddString("truncated")
	data := s.Output()

	d := NewDes(data[:len(data)-2])
	if d.ReadString() != "" {
		t.Fatal("expected empty string")
	}
	if d.Error() == nil {
		t.Fatal("expected an error")
	}
	// reads after the first failure keep returning zero values
	if d.ReadUint64() != 0 || len(d.ReadFixedByteArray(4)) != 4 {
		t.Fatal("expected zero values after failure")
	}
}
