package util

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// returns the timestamp (UNIX milliseconds)
func Time() uint64 {
	return uint64(time.Now().UnixMilli())
}
func FormatInt[V int | int64 | int32 | int16 | int8 | uint8 | uint16 | uint32](n V) string {
	return strconv.FormatInt(int64(n), 10)
}
func FormatUint[V uint | uint8 | uint16 | uint32 | uint64](n V) string {
	return strconv.FormatUint(uint64(n), 10)
}

func PadR(s string, l int) string {
	for len(s) < l {
		s = " " + s
	}
	return s
}
func PadL(s string, l int) string {
	for len(s) < l {
		s = s + " "
	}
	return s
}

// ShortString keeps the first and last four characters of s, e.g. "v1ab...9xyz".
// Strings that are already short are returned unchanged.
func ShortString(s string) string {
	if len(s) <= 11 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func U64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// big-endian encoding keeps the lexicographic order of the keys equal to the numeric order
func U64KeyBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// only use this in configuration etc - panics if the hex is invalid
func AssertHexDec(s string) []byte {
	dat, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return dat
}

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

type Mutex = deadlock.Mutex
type RWMutex = deadlock.RWMutex

func RandomUint64() uint64 {
	b := make([]byte, 8)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}

func RemovePort(s string) string {
	return strings.Split(s, ":")[0]
}

func IsHex(s string) bool {
	for _, v := range s {
		if v < '0' || v > 'f' || (v > '9' && v < 'a') {
			return false
		}
	}
	return true
}
