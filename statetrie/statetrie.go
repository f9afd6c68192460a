// Package statetrie narrows package trie's raw []byte key API to the
// 32-byte-key shape Ethereum-style state and storage tries actually use
// (spec §6's "key-typed façade"), and offers a secure variant that hashes
// arbitrary keys before they ever reach the trie.
package statetrie

import (
	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/trie"
)

// Trie constrains package trie's Trie to 32-byte keys.
type Trie struct {
	t *trie.Trie
}

// New returns a trie with an empty root, not yet committed.
func New(store trie.Store) *Trie {
	return &Trie{t: trie.New(store)}
}

// From resolves rootDigest from store.
func From(store trie.Store, rootDigest common.Hash) (*Trie, error) {
	t, err := trie.From(store, rootDigest)
	if err != nil {
		return nil, err
	}
	return &Trie{t: t}, nil
}

func (t *Trie) Get(key common.Hash) ([]byte, bool, error)   { return t.t.Get(key.Bytes()) }
func (t *Trie) Contains(key common.Hash) (bool, error)      { return t.t.Contains(key.Bytes()) }
func (t *Trie) Insert(key common.Hash, value []byte) error  { return t.t.Insert(key.Bytes(), value) }
func (t *Trie) Remove(key common.Hash) (bool, error)        { return t.t.Remove(key.Bytes()) }
func (t *Trie) Root() (common.Hash, error)                  { return t.t.Root() }
func (t *Trie) Iterator() *trie.Iterator                    { return t.t.Iterator() }
func (t *Trie) Prove(key common.Hash) ([][]byte, error)     { return t.t.Prove(key.Bytes()) }
