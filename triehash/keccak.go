// Package triehash provides the concrete digest function the trie engine's
// codec and commit path are written against: Keccak-256, the reference
// configuration named in spec §6. It is a thin wrapper so the rest of the
// module depends on one small interface instead of golang.org/x/crypto
// directly.
package triehash

import (
	"golang.org/x/crypto/sha3"

	"github.com/okonomi-labs/go-mpt/common"
)

// Sum256 hashes the concatenation of data with Keccak-256, the digest
// function the empty-trie root and every node reference in this module are
// defined in terms of.
func Sum256(data ...[]byte) common.Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h common.Hash
	d.Sum(h[:0])
	return h
}

// Hasher is a reusable Keccak-256 state, used by the committer to avoid
// reallocating a hash.Hash per node during a large commit.
type Hasher struct {
	sha sha3Hash
}

type sha3Hash interface {
	Write(p []byte) (n int, err error)
	Sum(b []byte) []byte
	Reset()
}

// NewHasher returns a reusable Keccak-256 hasher.
func NewHasher() *Hasher {
	return &Hasher{sha: sha3.NewLegacyKeccak256()}
}

// Sum hashes data and returns the 32-byte digest. The hasher is reset before
// each use, so one Hasher can serve any number of Sum calls in turn.
func (h *Hasher) Sum(data []byte) common.Hash {
	h.sha.Reset()
	h.sha.Write(data)
	var out common.Hash
	h.sha.Sum(out[:0])
	return out
}
