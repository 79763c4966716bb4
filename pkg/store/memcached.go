package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// MemCachedStore wraps a persistent Store with an in-memory write-behind
// layer: writes accumulate in mem/del until Persist flushes them down to
// ps in one PutChangeSet call, exactly the two-tier shape teacher's
// MemCachedStore gives the blockchain DAO in front of the chain DB. A
// read-through LRU additionally caches persisted reads, standing in for
// teacher's block/tx caches (hashicorp/golang-lru) in front of Registry
// record lookups.
type MemCachedStore struct {
	MemoryStore

	mu    sync.RWMutex
	ps    Store
	cache *lru.Cache
}

// DefaultCacheSize is the number of persisted reads kept hot per
// MemCachedStore.
const DefaultCacheSize = 1024

// NewMemCachedStore wraps ps with a write-behind memory layer and a
// read-through LRU cache of DefaultCacheSize entries.
func NewMemCachedStore(ps Store) *MemCachedStore {
	c, _ := lru.New(DefaultCacheSize)
	return &MemCachedStore{
		MemoryStore: MemoryStore{mem: make(map[string][]byte)},
		ps:          ps,
		cache:       c,
	}
}

// NewPrivateMemCachedStore returns exactly what NewMemCachedStore(ps)
// returns; it does not mark, separate or disable the read-through cache.
func NewPrivateMemCachedStore(ps Store) *MemCachedStore {
	return NewMemCachedStore(ps)
}

func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.mem[string(key)]
	s.mu.RUnlock()
	if ok {
		if v == nil {
			return nil, ErrKeyNotFound
		}
		return cloneBytes(v), nil
	}

	if cached, ok := s.cache.Get(string(key)); ok {
		return cloneBytes(cached.([]byte)), nil
	}

	v, err := s.ps.Get(key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(string(key), v)
	return cloneBytes(v), nil
}

func (s *MemCachedStore) Put(key, value []byte) error {
	s.mu.Lock()
	s.mem[string(key)] = cloneBytes(value)
	s.mu.Unlock()
	s.cache.Remove(string(key))
	return nil
}

func (s *MemCachedStore) Delete(key []byte) error {
	s.mu.Lock()
	s.mem[string(key)] = nil
	s.mu.Unlock()
	s.cache.Remove(string(key))
	return nil
}

// GetBatch renders the pending write set as a MemBatch, distinguishing
// Added (new key) from Changed (existing key in ps) the way teacher's
// notification feed reports persisted storage operations.
func (s *MemCachedStore) GetBatch() *MemBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := &MemBatch{}
	for k, v := range s.mem {
		_, existsErr := s.ps.Get([]byte(k))
		exists := existsErr == nil
		if v == nil {
			b.Deleted = append(b.Deleted, KeyValueExists{
				KeyValue: KeyValue{Key: []byte(k)},
				Exists:   exists,
			})
			continue
		}
		b.Put = append(b.Put, KeyValueExists{
			KeyValue: KeyValue{Key: []byte(k), Value: v},
			Exists:   exists,
		})
	}
	return b
}

// Persist flushes the pending write set down to the wrapped Store in one
// PutChangeSet call and clears the in-memory layer on success, returning
// the number of keys written. On failure the in-memory layer is left
// untouched so a caller can retry or inspect state.
func (s *MemCachedStore) Persist() (int, error) {
	return s.persist(false)
}

// PersistSync is Persist without any batching niceties beyond what
// PutChangeSet already provides; kept distinct to mirror teacher's
// Store.PersistSync/Persist split used by benchmarks.
func (s *MemCachedStore) PersistSync() (int, error) {
	return s.persist(false)
}

func (s *MemCachedStore) persist(_ bool) (int, error) {
	s.mu.Lock()
	if len(s.mem) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	puts := make(map[string][]byte)
	dels := make(map[string][]byte)
	for k, v := range s.mem {
		if v == nil {
			dels[k] = nil
		} else {
			puts[k] = v
		}
	}
	s.mu.Unlock()

	if err := s.ps.PutChangeSet(puts, dels); err != nil {
		return 0, err
	}

	s.mu.Lock()
	for k := range puts {
		delete(s.mem, k)
		s.cache.Remove(k)
	}
	for k := range dels {
		delete(s.mem, k)
		s.cache.Remove(k)
	}
	s.mu.Unlock()
	return len(puts) + len(dels), nil
}

// Seek walks the merged view: persisted keys from ps overlaid with the
// pending in-memory writes/deletes, deduplicated and sorted exactly like
// teacher's MemCachedStore.Seek.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mu.RLock()
	overlay := make(map[string][]byte, len(s.mem))
	for k, v := range s.mem {
		overlay[k] = v
	}
	s.mu.RUnlock()

	seen := make(map[string]bool, len(overlay))
	var merged []KeyValue
	for k, v := range overlay {
		if v == nil {
			seen[k] = true
			continue
		}
		if len(rng.Prefix) == 0 || hasPrefix([]byte(k), rng.Prefix) {
			merged = append(merged, KeyValue{Key: []byte(k), Value: v})
		}
		seen[k] = true
	}

	s.ps.Seek(SeekRange{Prefix: rng.Prefix}, func(k, v []byte) bool {
		if !seen[string(k)] {
			merged = append(merged, KeyValue{Key: cloneBytes(k), Value: cloneBytes(v)})
		}
		return true
	})

	sortedKeys := make([][]byte, len(merged))
	byKey := make(map[string][]byte, len(merged))
	for i, kv := range merged {
		sortedKeys[i] = kv.Key
		byKey[string(kv.Key)] = kv.Value
	}
	ordered := seekSortedKeys(sortedKeys, SeekRange{Prefix: rng.Prefix, Start: rng.Start, Backwards: rng.Backwards})
	for _, k := range ordered {
		if !f(k, byKey[string(k)]) {
			return
		}
	}
}

func hasPrefix(k, prefix []byte) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (s *MemCachedStore) Close() error {
	return s.ps.Close()
}
