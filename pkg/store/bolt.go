package store

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

var rootBucket = []byte("envoi")

// BoltOptions configures BoltStore, mirroring teacher's BoltDBOptions.
type BoltOptions struct {
	FilePath string
	ReadOnly bool
}

// BoltStore is the default on-disk persistence backend, one flat bucket
// keyed by the same namespaced keys MemoryStore uses.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if necessary) a bbolt database at
// opts.FilePath with a single root bucket.
func NewBoltStore(opts BoltOptions) (*BoltStore, error) {
	db, err := bolt.Open(opts.FilePath, 0o600, &bolt.Options{ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, err
	}
	if !opts.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(rootBucket)
			return err
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		if b == nil {
			return ErrKeyNotFound
		}
		v := b.Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		value = cloneBytes(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BoltStore) Put(key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		return b.Put(key, value)
	})
}

func (s *BoltStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		return b.Delete(key)
	})
}

func (s *BoltStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		for k, v := range puts {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range dels {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		if rng.Backwards {
			for k, v := c.Last(); k != nil; k, v = c.Prev() {
				if !bytes.HasPrefix(k, rng.Prefix) {
					continue
				}
				if rng.Start != nil && bytes.Compare(k, rng.Start) > 0 {
					continue
				}
				if !f(k, v) {
					return nil
				}
			}
			return nil
		}
		start := rng.Prefix
		if rng.Start != nil {
			start = rng.Start
		}
		for k, v := c.Seek(start); k != nil && bytes.HasPrefix(k, rng.Prefix); k, v = c.Next() {
			if !f(k, v) {
				return nil
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
