package lmdb

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/util"

	lmdb "github.com/PowerDNS/lmdb-go/lmdb"
	"github.com/pkg/errors"
)

var _ adb.DB = &DB{}

type DB struct {
	env *lmdb.Env

	log *logger.Log

	resizeLock util.Mutex
}

func New(dbpath string, filemode os.FileMode, log *logger.Log) (*DB, error) {
	var err error

	d := &DB{
		log: log,
	}

	d.env, err = lmdb.NewEnv()
	if err != nil {
		return nil, err
	}

	d.env.SetMaxDBs(16)
	d.env.SetMapSize(512 * 1024)
	d.env.SetFlags(lmdb.WriteMap)

	dbpath, err = filepath.Abs(dbpath)
	if err != nil {
		return nil, err
	}

	err = os.Mkdir(dbpath, filemode)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	err = verifyDirPermissions(dbpath)
	if err != nil {
		return nil, err
	}

	// NoMetaSync: the last transactions may be lost on a crash, the dev ledger can live with that
	err = d.env.Open(dbpath, lmdb.NoMetaSync, filemode)
	if err != nil {
		d.env.Close()
		return nil, errors.Wrapf(err, "opening lmdb environment %s", dbpath)
	}

	return d, nil
}

func verifyDirPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "directory access error")
	}

	if !info.IsDir() {
		return errors.New("path is not a directory")
	}

	testFile := filepath.Join(path, "permission_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return errors.Wrap(err, "write permission denied")
	}
	os.Remove(testFile)

	return nil
}

func (d *DB) Index(name string) (dbi adb.Index) {
	err := d.env.Update(func(txn *lmdb.Txn) error {
		var err error
		dbi, err = txn.CreateDBI(name)
		return err
	})
	if err != nil {
		panic(err)
	}

	return
}

func (d *DB) View(f func(txn adb.Txn) error) error {
	return d.env.View(func(t *lmdb.Txn) error {
		txn := &Txn{
			txn: t,
		}

		return f(txn)
	})
}

const MAX_RESIZE_ATTEMPTS = 4
const GB = 1024 * 1024 * 1024

func (d *DB) Update(f func(txn adb.Txn) error) error {
	err := d.growIfNeeded()
	if err != nil {
		return err
	}

	for i := 0; ; i++ {
		err = d.env.Update(func(t *lmdb.Txn) error {
			txn := &Txn{
				txn: t,
			}

			return f(txn)
		})
		if !lmdb.IsMapFull(err) || i >= MAX_RESIZE_ATTEMPTS {
			return err
		}
		if err := d.grow(); err != nil {
			return err
		}
	}
}

func (d *DB) growIfNeeded() error {
	info, err := d.env.Info()
	if err != nil {
		return err
	}

	stat, err := d.env.Stat()
	if err != nil {
		return err
	}

	size_used := int64(stat.PSize) * info.LastPNO

	free := 1 - float64(size_used)/float64(info.MapSize)

	if free < 0.1 {
		return d.grow()
	}
	return nil
}

func (d *DB) grow() error {
	d.resizeLock.Lock()
	defer d.resizeLock.Unlock()

	info, err := d.env.Info()
	if err != nil {
		return err
	}

	newSize := info.MapSize * 2
	// increment at most by 1 GiB
	if info.MapSize > 1*GB {
		newSize = info.MapSize + GB
	}

	d.log.Infof("LMDB mapsize increase needed: %vMiB -> %vMiB", float64(info.MapSize)/1024/1024, float64(newSize)/1024/1024)

	return d.env.SetMapSize(newSize)
}

func (d *DB) Close() error {
	return d.env.Close()
}

type Txn struct {
	txn *lmdb.Txn
}

func (t *Txn) Get(d adb.Index, key []byte) []byte {
	dbi := d.(lmdb.DBI)
	r, err := t.txn.Get(dbi, key)
	if err != nil {
		return nil
	}
	return r
}

func (t *Txn) Put(d adb.Index, key []byte, value []byte) error {
	dbi := d.(lmdb.DBI)
	return t.txn.Put(dbi, key, value, 0)
}

func (t *Txn) Del(d adb.Index, key []byte) error {
	dbi := d.(lmdb.DBI)
	err := t.txn.Del(dbi, key, nil)
	if lmdb.IsNotFound(err) {
		return nil
	}
	return err
}

func (t *Txn) ForEach(d adb.Index, f func(k, v []byte) error) error {
	return t.ForEachInterrupt(d, func(k, v []byte) (bool, error) {
		return false, f(k, v)
	})
}

func (t *Txn) ForEachInterrupt(d adb.Index, f func(k, v []byte) (bool, error)) error {
	return t.scan(d, nil, f)
}

func (t *Txn) ForEachPrefix(d adb.Index, prefix []byte, f func(k, v []byte) (bool, error)) error {
	return t.scan(d, prefix, f)
}

func (t *Txn) scan(d adb.Index, prefix []byte, f func(k, v []byte) (bool, error)) error {
	cursor, err := t.txn.OpenCursor(d.(lmdb.DBI))
	if err != nil {
		return err
	}
	defer cursor.Close()

	var key, value []byte
	if len(prefix) == 0 {
		key, value, err = cursor.Get(nil, nil, lmdb.First)
	} else {
		key, value, err = cursor.Get(prefix, nil, lmdb.SetRange)
	}
	for {
		if lmdb.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "cursor get")
		}
		if !bytes.HasPrefix(key, prefix) {
			return nil
		}

		interrupt, err := f(key, value)
		if err != nil {
			return err
		}
		if interrupt {
			return nil
		}

		key, value, err = cursor.Get(nil, nil, lmdb.Next)
	}
}

func (t *Txn) Entries(d adb.Index) (uint64, error) {
	s, err := t.txn.Stat(d.(lmdb.DBI))
	if err != nil {
		return 0, err
	}
	return s.Entries, nil
}
