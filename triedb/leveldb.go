package triedb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/okonomi-labs/go-mpt/common"
)

// LevelStore is the "archive" store of spec §4.3: a durable, disk-backed
// Store whose Remove and RemoveBatch are no-ops. Nodes superseded by later
// commits stay on disk, so any historical root digest remains fully
// resolvable.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (creating if absent) a LevelDB database at path.
func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "triedb: open leveldb")
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(digest common.Hash) ([]byte, bool, error) {
	data, err := s.db.Get(digest.Bytes(), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "triedb: leveldb get")
	}
	return data, true, nil
}

func (s *LevelStore) Contains(digest common.Hash) (bool, error) {
	ok, err := s.db.Has(digest.Bytes(), nil)
	if err != nil {
		return false, errors.Wrap(err, "triedb: leveldb has")
	}
	return ok, nil
}

func (s *LevelStore) Insert(digest common.Hash, data []byte) error {
	return s.db.Put(digest.Bytes(), data, nil)
}

// Remove is a no-op: an archive store retains every node it has ever seen.
func (s *LevelStore) Remove(common.Hash) error { return nil }

func (s *LevelStore) InsertBatch(items map[common.Hash][]byte) error {
	batch := new(leveldb.Batch)
	for digest, data := range items {
		batch.Put(digest.Bytes(), data)
	}
	return errors.Wrap(s.db.Write(batch, nil), "triedb: leveldb batch write")
}

// RemoveBatch is a no-op for the same reason as Remove.
func (s *LevelStore) RemoveBatch([]common.Hash) error { return nil }

// Flush is a no-op: every Insert/InsertBatch call above already writes
// synchronously through the underlying LevelDB handle.
func (s *LevelStore) Flush() error { return nil }

// Close releases the underlying file handles.
func (s *LevelStore) Close() error {
	return s.db.Close()
}
