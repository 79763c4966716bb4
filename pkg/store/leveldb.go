package store

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBOptions configures LevelDBStore, mirroring teacher's
// DBConfiguration.LevelDBOptions.
type LevelDBOptions struct {
	DataDirectoryPath string
	ReadOnly          bool
}

// LevelDBStore is the alternate on-disk backend, selectable via
// ApplicationConfiguration.DBConfiguration.Type the same way teacher
// selects between BoltDB and LevelDB.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (creating if necessary) a LevelDB database rooted
// at opts.DataDirectoryPath.
func NewLevelDBStore(opts LevelDBOptions) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(opts.DataDirectoryPath, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *LevelDBStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range puts {
		batch.Put([]byte(k), v)
	}
	for k := range dels {
		batch.Delete([]byte(k))
	}
	return s.db.Write(batch, nil)
}

func (s *LevelDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	iter := s.db.NewIterator(util.BytesPrefix(rng.Prefix), nil)
	defer iter.Release()
	if rng.Backwards {
		ok := iter.Last()
		for ok {
			if rng.Start == nil || bytes.Compare(iter.Key(), rng.Start) <= 0 {
				if !f(cloneBytes(iter.Key()), cloneBytes(iter.Value())) {
					return
				}
			}
			ok = iter.Prev()
		}
		return
	}
	if rng.Start != nil {
		iter.Seek(rng.Start)
	} else {
		iter.First()
	}
	for iter.Valid() {
		if !f(cloneBytes(iter.Key()), cloneBytes(iter.Value())) {
			return
		}
		if !iter.Next() {
			break
		}
	}
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
