package trie

import (
	"github.com/pkg/errors"

	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/rlp"
)

// Root commits every change made since the trie was created or last
// committed: it collapses the dirty subtree into its canonical encoding,
// writes every newly-minted (digest, blob) pair to the store, evicts
// whatever the mutation chain dereferenced but did not re-derive, and
// resets the in-memory tree to a single HashRef stub pointing at the new
// digest.
//
// Root is idempotent: calling it again with nothing changed in between
// returns the same digest and writes nothing.
func (t *Trie) Root() (common.Hash, error) {
	if t.root == nil {
		// An empty trie still owes the store its canonical digest: spec §6
		// requires keccak(NULL) to be resolvable so that a later From() on
		// the empty root (or a proof against it) can find it.
		evictions := t.tracer.evictionSet()
		if len(evictions) == 0 {
			// Nothing dereferenced since the last commit and the empty node
			// is already stored: there is nothing to write.
			if ok, err := t.store.Contains(emptyRootHash); err == nil && ok {
				return emptyRootHash, nil
			}
		}
		if err := t.store.Insert(emptyRootHash, rlp.Empty); err != nil {
			return common.Hash{}, errors.Wrap(err, "trie: root: insert empty node")
		}
		if len(evictions) > 0 {
			if err := t.store.RemoveBatch(evictions); err != nil {
				return common.Hash{}, errors.Wrap(err, "trie: root: evict stale nodes")
			}
		}
		if err := t.store.Flush(); err != nil {
			return common.Hash{}, errors.Wrap(err, "trie: root: flush store")
		}
		t.tracer.reset()
		return emptyRootHash, nil
	}
	// Already committed and untouched since: t.root is the HashRef stub Root
	// left behind last time, not a node.cache() can report on (a hashNode's
	// cache() always answers (nil, false), since it carries no flags of its
	// own) — match on the type directly rather than falling through to
	// encode(), which panics on a bare HashRef.
	if hn, ok := t.root.(hashNode); ok {
		return common.Hash(hn), nil
	}
	if hash, dirty := t.root.cache(); hash != nil && !dirty {
		return common.Hash(hash), nil
	}

	enc := newNodeEncoder(t.tracer)
	blob := enc.encode(t.root)

	// Unlike a child reference, the root is always hashed and stored
	// regardless of its encoded size: it must remain independently
	// addressable by digest for a later From() call.
	digest := enc.hasher.Sum(blob)
	enc.pending[digest] = common.CopyBytes(blob)
	t.tracer.markGen(digest)

	if err := t.store.InsertBatch(enc.pending); err != nil {
		return common.Hash{}, errors.Wrap(err, "trie: root: flush pending nodes")
	}
	if evictions := t.tracer.evictionSet(); len(evictions) > 0 {
		if err := t.store.RemoveBatch(evictions); err != nil {
			return common.Hash{}, errors.Wrap(err, "trie: root: evict stale nodes")
		}
	}
	if err := t.store.Flush(); err != nil {
		return common.Hash{}, errors.Wrap(err, "trie: root: flush store")
	}
	t.tracer.reset()
	t.root = hashNode(digest)
	return digest, nil
}
