package trie

import "github.com/okonomi-labs/go-mpt/common"

// Store is the narrow contract C4 consumes: an abstract digest-keyed blob
// map. Implementations live in package triedb; the engine never assumes a
// particular storage technology, and never assumes Remove actually frees
// anything — "light" stores honor it, "archive" stores may no-op it (spec
// §4.3).
type Store interface {
	// Get returns the bytes stored under digest, or ok=false if absent.
	Get(digest common.Hash) (data []byte, ok bool, err error)
	// Contains reports whether digest is present, without fetching its
	// bytes.
	Contains(digest common.Hash) (bool, error)
	// Insert stores data under digest.
	Insert(digest common.Hash, data []byte) error
	// Remove removes digest. Archive stores may treat this as a no-op.
	Remove(digest common.Hash) error
	// InsertBatch stores every (digest, data) pair.
	InsertBatch(items map[common.Hash][]byte) error
	// RemoveBatch removes every listed digest. Archive stores may no-op.
	RemoveBatch(digests []common.Hash) error
	// Flush durably persists any buffered writes.
	Flush() error
}
