package trie

import (
	"github.com/pkg/errors"

	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/triehash"
)

// Prove returns the ordered, root-first list of canonically-encoded nodes
// along the path to key: a Merkle proof that a verifier can replay against
// a known root digest without access to the rest of the trie.
//
// Only nodes that are independently addressable by digest are included: a
// node spliced inline into its parent's encoding (< 32 bytes) never appears
// on its own in the store, so it would add nothing a verifier could look up
// and is left out, matching spec's "only nodes resolved from the blob
// store" rule. A node decoded via HashRef resolution always carries its own
// digest in flags.hash; an embedded child decoded as part of its parent's
// blob does not.
//
// Prove should be called against a trie whose nodes are already hash-stable
// (i.e. after a Root call): an uncommitted node's digest, if one had to be
// minted here to encode it, would not correspond to anything in the store.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	p := NewPathFromRaw(key, true)
	enc := newNodeEncoder(nil)
	var proof [][]byte
	appendIfStored := func(v node) {
		if hash, _ := v.cache(); hash != nil {
			proof = append(proof, enc.encode(v))
		}
	}
	n := t.root
	for {
		switch v := n.(type) {
		case nil:
			return proof, nil
		case hashNode:
			resolved, err := t.resolveForRead(v)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				return nil, errors.Wrapf(ErrInvalidProof, "missing trie node %s while building proof", common.Hash(v))
			}
			n = resolved
		case *leafNode:
			appendIfStored(v)
			return proof, nil
		case *extensionNode:
			appendIfStored(v)
			if p.CommonPrefixLen(v.Key) < v.Key.Len() {
				return proof, nil
			}
			p = p.Offset(v.Key.Len())
			n = v.Val
		case *branchNode:
			appendIfStored(v)
			if p.Len() == 0 || p.At(0) == terminatorNibble {
				return proof, nil
			}
			idx := p.At(0)
			p = p.Offset(1)
			n = v.Children[idx]
		default:
			panic("trie: invalid node type in Prove")
		}
	}
}

// VerifyProof checks that proof is a valid Merkle proof of key's value (or
// absence) under rootDigest. It rebuilds a disposable trie over a store
// containing only the supplied proof nodes and re-runs an ordinary Get
// against it, so it exercises exactly the same decoding and traversal rules
// as the live trie.
func VerifyProof(rootDigest common.Hash, key []byte, proof [][]byte) ([]byte, bool, error) {
	store := make(proofStore, len(proof))
	for _, blob := range proof {
		store[triehash.Sum256(blob)] = common.CopyBytes(blob)
	}
	tr, err := From(store, rootDigest)
	if err != nil {
		return nil, false, errors.Wrap(ErrInvalidProof, err.Error())
	}
	val, ok, err := tr.Get(key)
	if err != nil {
		return nil, false, errors.Wrap(ErrInvalidProof, err.Error())
	}
	return val, ok, nil
}

// proofStore is a read-only, map-backed Store over exactly the nodes
// supplied in a proof. Unlike a live trie's lazy/tolerant descent, a digest
// absent from this store is a hard error rather than Empty: an incomplete
// proof must fail verification, not silently resolve to "not found".
type proofStore map[common.Hash][]byte

func (s proofStore) Get(digest common.Hash) ([]byte, bool, error) {
	blob, ok := s[digest]
	if !ok {
		return nil, false, errors.Wrapf(ErrInvalidProof, "proof is missing node %s", digest)
	}
	return blob, true, nil
}

func (s proofStore) Contains(digest common.Hash) (bool, error) {
	_, ok := s[digest]
	return ok, nil
}

func (s proofStore) Insert(common.Hash, []byte) error        { return nil }
func (s proofStore) Remove(common.Hash) error                { return nil }
func (s proofStore) InsertBatch(map[common.Hash][]byte) error { return nil }
func (s proofStore) RemoveBatch([]common.Hash) error          { return nil }
func (s proofStore) Flush() error                             { return nil }
