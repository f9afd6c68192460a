// Package triedb collects Store backends and decorators for package trie:
// a light in-memory store, an archive LevelDB-backed store, an LRU read
// cache with singleflight dedup, and a Prometheus metrics wrapper.
package triedb

import (
	"github.com/pkg/errors"

	"github.com/okonomi-labs/go-mpt/accdb"
	"github.com/okonomi-labs/go-mpt/accdb/memorydb"
	"github.com/okonomi-labs/go-mpt/common"
)

// MemoryStore is the "light" store of spec §4.3: an ephemeral, map-backed
// Store that honors Remove. It is the default backend for tests and for any
// caller that does not need the trie's state to outlive the process.
type MemoryStore struct {
	db accdb.KeyValueStore
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{db: memorydb.New()}
}

func (s *MemoryStore) Get(digest common.Hash) ([]byte, bool, error) {
	data, err := s.db.Get(digest.Bytes())
	if err != nil {
		if err == memorydb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "triedb: memorystore get")
	}
	return data, true, nil
}

func (s *MemoryStore) Contains(digest common.Hash) (bool, error) {
	ok, err := s.db.Has(digest.Bytes())
	if err != nil {
		return false, errors.Wrap(err, "triedb: memorystore has")
	}
	return ok, nil
}

func (s *MemoryStore) Insert(digest common.Hash, data []byte) error {
	return s.db.Put(digest.Bytes(), data)
}

func (s *MemoryStore) Remove(digest common.Hash) error {
	return s.db.Delete(digest.Bytes())
}

func (s *MemoryStore) InsertBatch(items map[common.Hash][]byte) error {
	batch := s.db.NewBatch()
	for digest, data := range items {
		if err := batch.Put(digest.Bytes(), data); err != nil {
			return err
		}
	}
	return batch.Submit()
}

func (s *MemoryStore) RemoveBatch(digests []common.Hash) error {
	batch := s.db.NewBatch()
	for _, digest := range digests {
		if err := batch.Delete(digest.Bytes()); err != nil {
			return err
		}
	}
	return batch.Submit()
}

// Flush is a no-op: MemoryStore has no durable backing to sync.
func (s *MemoryStore) Flush() error { return nil }
