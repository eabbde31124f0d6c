// Package adb abstracts the key-value stores the ledger can run on. Values returned by a Txn are only
// valid until the transaction ends.
package adb

type DB interface {
	Index(string) Index

	View(func(txn Txn) error) error
	Update(func(txn Txn) error) error
	Close() error
}

type Index any

type Txn interface {
	Get(Index, []byte) []byte
	Put(Index, []byte, []byte) error
	Del(Index, []byte) error
	ForEach(Index, func(k, v []byte) error) error
	ForEachInterrupt(Index, func(k, v []byte) (bool, error)) error
	// ForEachPrefix visits the keys starting with prefix in ascending byte order, until f returns
	// true or an error.
	ForEachPrefix(Index, []byte, func(k, v []byte) (bool, error)) error
	Entries(Index) (uint64, error)
}
