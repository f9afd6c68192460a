package statetrie

import (
	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/trie"
	"github.com/okonomi-labs/go-mpt/triehash"
)

// SecureTrie hashes every key with triehash before it reaches the
// underlying trie, so that an adversary who controls keys (e.g. account
// addresses) cannot bias trie structure toward a worst-case shape. It keeps
// a preimage map so the original key can be recovered from its hash, the
// way an Ethereum state trie must for state export.
type SecureTrie struct {
	t         *Trie
	preimages map[common.Hash][]byte
}

// NewSecure returns a secure trie with an empty root, not yet committed.
func NewSecure(store trie.Store) *SecureTrie {
	return &SecureTrie{t: New(store), preimages: make(map[common.Hash][]byte)}
}

// FromSecure resolves rootDigest from store.
func FromSecure(store trie.Store, rootDigest common.Hash) (*SecureTrie, error) {
	t, err := From(store, rootDigest)
	if err != nil {
		return nil, err
	}
	return &SecureTrie{t: t, preimages: make(map[common.Hash][]byte)}, nil
}

func (t *SecureTrie) Get(key []byte) ([]byte, bool, error) {
	return t.t.Get(triehash.Sum256(key))
}

func (t *SecureTrie) Contains(key []byte) (bool, error) {
	return t.t.Contains(triehash.Sum256(key))
}

func (t *SecureTrie) Insert(key, value []byte) error {
	hk := triehash.Sum256(key)
	t.preimages[hk] = common.CopyBytes(key)
	return t.t.Insert(hk, value)
}

func (t *SecureTrie) Remove(key []byte) (bool, error) {
	return t.t.Remove(triehash.Sum256(key))
}

func (t *SecureTrie) Root() (common.Hash, error) { return t.t.Root() }

// GetKey recovers the original key whose hash is hashedKey, if this trie
// instance inserted it (preimages are in-memory only, never persisted).
func (t *SecureTrie) GetKey(hashedKey common.Hash) ([]byte, bool) {
	v, ok := t.preimages[hashedKey]
	return v, ok
}
