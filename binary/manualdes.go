package binary

import (
	"encoding/binary"
	"errors"
	"runtime"
	"strconv"
	"strings"
)

// upper bound of a single variable-length field, so that a corrupted length prefix cannot make us
// allocate or slice absurd amounts of data
const MaxSliceLength = 1 << 20

func NewDes(data []byte) Des {
	return Des{
		data: data,
	}
}

// Des reads values in order. The first failure is remembered and every following read returns a
// zero value, so callers only need to check Error once at the end.
type Des struct {
	data []byte
	err  error
}

func (d Des) RemainingData() []byte {
	return d.data
}

func (s *Des) fail(msg string) {
	if s.err == nil {
		s.err = errors.New(getCaller() + " " + msg)
	}
}

func (s *Des) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || len(s.data) < n {
		s.fail("invalid length")
		return nil
	}
	b := s.data[:n]
	s.data = s.data[n:]
	return b
}

func (s *Des) ReadUint8() uint8 {
	b := s.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}
func (s *Des) ReadUint32() uint32 {
	b := s.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
func (s *Des) ReadUint64() uint64 {
	b := s.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
func (s *Des) ReadUvarint() uint64 {
	if s.err != nil {
		return 0
	}
	d, x := binary.Uvarint(s.data)
	if x <= 0 {
		s.fail("invalid uvarint")
		return 0
	}
	s.data = s.data[x:]
	return d
}

// ReadFixedByteArray always returns a slice of the requested length, zeroed on failure.
func (s *Des) ReadFixedByteArray(length int) []byte {
	b := s.take(length)
	if b == nil {
		return make([]byte, length)
	}
	return b
}
func (s *Des) ReadByteSlice() []byte {
	length := s.ReadUvarint()
	if s.err != nil {
		return []byte{}
	}
	if length > MaxSliceLength {
		s.fail("byte slice too long")
		return []byte{}
	}
	b := s.take(int(length))
	if b == nil {
		return []byte{}
	}
	return b
}
func (s *Des) ReadString() string {
	return string(s.ReadByteSlice())
}

func (s *Des) ReadBool() bool {
	switch s.ReadUint8() {
	case 0:
		return false
	case 1:
		return true
	default:
		s.fail("invalid boolean value")
		return false
	}
}

func (s *Des) Error() error {
	return s.err
}

func getCaller() string {
	_, file, line, _ := runtime.Caller(3)
	fileSpl := strings.Split(file, "/")
	return fileSpl[len(fileSpl)-1] + ":" + strconv.FormatInt(int64(line), 10)
}
