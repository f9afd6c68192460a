package triedb

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/okonomi-labs/go-mpt/common"
)

// CachingStore wraps another Store with a bounded in-memory read cache and
// request deduplication: concurrent Get calls for the same digest (common
// when several goroutines descend the same hot subtree) collapse into a
// single underlying fetch.
type CachingStore struct {
	next  Store
	cache *lru.Cache[common.Hash, []byte]
	group singleflight.Group
}

// Store is the subset of trie.Store that triedb decorators wrap. It is
// defined here, identical in shape to trie.Store, so this package never
// needs to import package trie (trie already imports triedb's eventual
// consumers would otherwise cycle); any trie.Store satisfies it structurally
// and vice versa.
type Store interface {
	Get(digest common.Hash) (data []byte, ok bool, err error)
	Contains(digest common.Hash) (bool, error)
	Insert(digest common.Hash, data []byte) error
	Remove(digest common.Hash) error
	InsertBatch(items map[common.Hash][]byte) error
	RemoveBatch(digests []common.Hash) error
	Flush() error
}

// NewCachingStore wraps next with an LRU read cache holding up to size
// entries.
func NewCachingStore(next Store, size int) (*CachingStore, error) {
	c, err := lru.New[common.Hash, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachingStore{next: next, cache: c}, nil
}

func (s *CachingStore) Get(digest common.Hash) ([]byte, bool, error) {
	if data, ok := s.cache.Get(digest); ok {
		return data, true, nil
	}
	v, err, _ := s.group.Do(digest.String(), func() (interface{}, error) {
		data, ok, err := s.next.Get(digest)
		if err != nil || !ok {
			return nil, err
		}
		s.cache.Add(digest, data)
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (s *CachingStore) Contains(digest common.Hash) (bool, error) {
	if s.cache.Contains(digest) {
		return true, nil
	}
	return s.next.Contains(digest)
}

func (s *CachingStore) Insert(digest common.Hash, data []byte) error {
	s.cache.Add(digest, data)
	return s.next.Insert(digest, data)
}

func (s *CachingStore) Remove(digest common.Hash) error {
	s.cache.Remove(digest)
	return s.next.Remove(digest)
}

func (s *CachingStore) InsertBatch(items map[common.Hash][]byte) error {
	for digest, data := range items {
		s.cache.Add(digest, data)
	}
	return s.next.InsertBatch(items)
}

func (s *CachingStore) RemoveBatch(digests []common.Hash) error {
	for _, digest := range digests {
		s.cache.Remove(digest)
	}
	return s.next.RemoveBatch(digests)
}

func (s *CachingStore) Flush() error { return s.next.Flush() }
