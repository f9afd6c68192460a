package trie

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/rlp"
	"github.com/okonomi-labs/go-mpt/triehash"
)

// emptyRootHash is keccak(encode(Empty)) — the canonical digest of the
// empty trie.
var emptyRootHash = triehash.Sum256(rlp.Empty)

// EmptyRootHash returns the canonical digest of the empty trie.
func EmptyRootHash() common.Hash { return emptyRootHash }

// Trie is a Modified Merkle Patricia Trie sitting on top of a Store. Use New
// for a fresh empty trie or From to resolve an existing root digest.
//
// Trie is not safe for concurrent use.
type Trie struct {
	root node

	store  Store
	tracer *tracer
}

// New returns a trie with an empty root, not yet committed.
func New(store Store) *Trie {
	return &Trie{store: store, tracer: newTracer()}
}

// From resolves rootDigest from store and returns a trie rooted at it. The
// empty-trie digest and the zero digest are not looked up: both yield an
// empty trie. Any other rootDigest absent from the store returns
// ErrInvalidStateRoot: unlike descent through an already-live trie, a
// missing root is never silently treated as Empty.
func From(store Store, rootDigest common.Hash) (*Trie, error) {
	t := &Trie{store: store, tracer: newTracer()}
	if rootDigest == emptyRootHash || rootDigest.IsZero() {
		return t, nil
	}
	data, ok, err := store.Get(rootDigest)
	if err != nil {
		return nil, errors.Wrap(err, "trie: from: store error")
	}
	if !ok {
		return nil, errors.Wrap(ErrInvalidStateRoot, (&MissingNodeError{NodeHash: rootDigest}).Error())
	}
	n, err := decodeNode(data, &rootDigest)
	if err != nil {
		return nil, errors.Wrap(err, "trie: from: decode root")
	}
	t.root = n
	return t, nil
}

// resolveForRead materializes a HashRef without tracer bookkeeping: used by
// Get/Contains, which never populate passing-keys (a read must never make a
// still-live node a candidate for eviction). A missing digest is tolerated
// and treated as Empty; a present-but-malformed blob still surfaces
// ErrDecode.
func (t *Trie) resolveForRead(hn hashNode) (node, error) {
	digest := common.Hash(hn)
	data, ok, err := t.store.Get(digest)
	if err != nil {
		return nil, errors.Wrap(err, "trie: store error resolving node")
	}
	if !ok {
		return nil, nil
	}
	n, err := decodeNode(data, &digest)
	if err != nil {
		return nil, errors.Wrapf(err, "trie: decode node %s", digest)
	}
	return n, nil
}

// resolveAndTrack materializes a HashRef during a mutation chain (insert,
// delete, degenerate) and records its digest into passing-keys.
func (t *Trie) resolveAndTrack(hn hashNode) (node, error) {
	digest := common.Hash(hn)
	n, err := t.resolveForRead(hn)
	if err != nil {
		return nil, err
	}
	t.tracer.markPassing(digest)
	return n, nil
}

// Get returns the value stored under key, and whether it was present.
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	p := NewPathFromRaw(key, true)
	val, newRoot, err := t.getAt(t.root, p)
	if err != nil {
		return nil, false, err
	}
	t.root = newRoot
	return val, val != nil, nil
}

// Contains reports whether key is present.
func (t *Trie) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

func (t *Trie) getAt(n node, p Path) (value []byte, newNode node, err error) {
	switch v := n.(type) {
	case nil:
		return nil, nil, nil
	case *leafNode:
		if v.Key.Equal(p) {
			return v.Val, v, nil
		}
		return nil, v, nil
	case *branchNode:
		if p.Len() == 0 || p.At(0) == terminatorNibble {
			return v.Value, v, nil
		}
		idx := p.At(0)
		val, newChild, err := t.getAt(v.Children[idx], p.Offset(1))
		if err != nil {
			return nil, v, err
		}
		if newChild != v.Children[idx] {
			v = v.copy()
			v.Children[idx] = newChild
		}
		return val, v, nil
	case *extensionNode:
		if p.CommonPrefixLen(v.Key) < v.Key.Len() {
			return nil, v, nil
		}
		val, newChild, err := t.getAt(v.Val, p.Offset(v.Key.Len()))
		if err != nil {
			return nil, v, err
		}
		if newChild != v.Val {
			v = v.copy()
			v.Val = newChild
		}
		return val, v, nil
	case hashNode:
		resolved, err := t.resolveForRead(v)
		if err != nil {
			return nil, v, err
		}
		val, nn, err := t.getAt(resolved, p)
		if err != nil {
			return nil, v, err
		}
		return val, nn, nil
	default:
		panic("trie: invalid node type in getAt")
	}
}

// Insert stores value under key. An empty value is treated as Remove: no
// encoding could otherwise distinguish "present with empty value" from
// "absent" inside a branch's value slot.
func (t *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		_, err := t.Remove(key)
		return err
	}
	p := NewPathFromRaw(key, true)
	_, newRoot, err := t.insertAt(t.root, p, value)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// insertAt returns (dirty, replacement, err). dirty is false when the
// subtree is unchanged, letting ancestors skip rebuilding (and therefore
// skip re-hashing) a path nothing on it actually mutated.
func (t *Trie) insertAt(n node, p Path, value []byte) (dirty bool, newNode node, err error) {
	switch v := n.(type) {
	case nil:
		return true, &leafNode{Key: p.Copy(), Val: value, flags: newFlag()}, nil

	case *leafNode:
		m := p.CommonPrefixLen(v.Key)
		if m == v.Key.Len() && m == p.Len() {
			if bytes.Equal(v.Val, value) {
				return false, v, nil
			}
			nn := v.copy()
			nn.Val = value
			nn.flags = newFlag()
			return true, nn, nil
		}
		branch := &branchNode{flags: newFlag()}
		// Either side's remaining key can be just the terminator (one key is
		// a byte-prefix of the other, e.g. "dog"/"dogglesworth"): that side
		// has no nibble left to branch on and its value belongs in
		// branch.Value, not branch.Children[16] (out of range for [16]node).
		if v.Key.At(m) == terminatorNibble {
			branch.Value = v.Val
		} else if _, branch.Children[v.Key.At(m)], err = t.insertAt(nil, v.Key.Offset(m+1), v.Val); err != nil {
			return false, nil, err
		}
		if p.At(m) == terminatorNibble {
			branch.Value = value
		} else if _, branch.Children[p.At(m)], err = t.insertAt(nil, p.Offset(m+1), value); err != nil {
			return false, nil, err
		}
		if m == 0 {
			return true, branch, nil
		}
		return true, &extensionNode{Key: p.Slice(0, m), Val: branch, flags: newFlag()}, nil

	case *branchNode:
		if p.Len() == 0 || p.At(0) == terminatorNibble {
			if v.Value != nil && bytes.Equal(v.Value, value) {
				return false, v, nil
			}
			nn := v.copy()
			nn.Value = value
			nn.flags = newFlag()
			return true, nn, nil
		}
		idx := p.At(0)
		dirty, nc, err := t.insertAt(v.Children[idx], p.Offset(1), value)
		if !dirty || err != nil {
			return false, v, err
		}
		nn := v.copy()
		nn.flags = newFlag()
		nn.Children[idx] = nc
		return true, nn, nil

	case *extensionNode:
		m := p.CommonPrefixLen(v.Key)
		switch {
		case m == 0:
			var branchChild node
			if v.Key.Len() == 1 {
				branchChild = v.Val
			} else {
				branchChild = &extensionNode{Key: v.Key.Offset(1), Val: v.Val, flags: newFlag()}
			}
			branch := &branchNode{flags: newFlag()}
			branch.Children[v.Key.At(0)] = branchChild
			_, nb, err := t.insertAt(branch, p, value)
			if err != nil {
				return false, nil, err
			}
			return true, nb, nil
		case m == v.Key.Len():
			dirty, nc, err := t.insertAt(v.Val, p.Offset(m), value)
			if !dirty || err != nil {
				return false, v, err
			}
			return true, &extensionNode{Key: v.Key, Val: nc, flags: newFlag()}, nil
		default:
			subExt := &extensionNode{Key: v.Key.Offset(m), Val: v.Val, flags: newFlag()}
			_, newSub, err := t.insertAt(subExt, p.Offset(m), value)
			if err != nil {
				return false, nil, err
			}
			return true, &extensionNode{Key: v.Key.Slice(0, m), Val: newSub, flags: newFlag()}, nil
		}

	case hashNode:
		resolved, err := t.resolveAndTrack(v)
		if err != nil {
			return false, nil, err
		}
		dirty, nc, err := t.insertAt(resolved, p, value)
		if !dirty || err != nil {
			return false, resolved, err
		}
		return true, nc, nil

	default:
		panic("trie: invalid node type in insertAt")
	}
}

// Remove deletes key, reporting whether it was present.
func (t *Trie) Remove(key []byte) (bool, error) {
	p := NewPathFromRaw(key, true)
	deleted, newRoot, err := t.deleteAt(t.root, p)
	if err != nil {
		return false, err
	}
	t.root = newRoot
	return deleted, nil
}

func (t *Trie) deleteAt(n node, p Path) (deleted bool, newNode node, err error) {
	switch v := n.(type) {
	case nil:
		return false, nil, nil

	case *leafNode:
		if v.Key.Equal(p) {
			return true, nil, nil
		}
		return false, v, nil

	case *branchNode:
		if p.Len() == 0 || p.At(0) == terminatorNibble {
			if v.Value == nil {
				return false, v, nil
			}
			nn := v.copy()
			nn.Value = nil
			nn.flags = newFlag()
			reduced, err := t.degenerate(nn)
			return true, reduced, err
		}
		idx := p.At(0)
		deleted, nc, err := t.deleteAt(v.Children[idx], p.Offset(1))
		if !deleted || err != nil {
			return false, v, err
		}
		nn := v.copy()
		nn.flags = newFlag()
		nn.Children[idx] = nc
		reduced, err := t.degenerate(nn)
		return true, reduced, err

	case *extensionNode:
		if p.CommonPrefixLen(v.Key) < v.Key.Len() {
			return false, v, nil
		}
		deleted, nc, err := t.deleteAt(v.Val, p.Offset(v.Key.Len()))
		if !deleted || err != nil {
			return false, v, err
		}
		nn := v.copy()
		nn.flags = newFlag()
		nn.Val = nc
		reduced, err := t.degenerate(nn)
		return true, reduced, err

	case hashNode:
		resolved, err := t.resolveAndTrack(v)
		if err != nil {
			return false, nil, err
		}
		deleted, nc, err := t.deleteAt(resolved, p)
		if !deleted || err != nil {
			return false, resolved, err
		}
		return true, nc, nil

	default:
		panic("trie: invalid node type in deleteAt")
	}
}

// degenerate rewrites a structurally weakened node (a Branch that just lost
// a slot, an Extension whose child just changed) back into canonical shape:
// a Branch with fewer than two live slots collapses into a Leaf or an
// Extension; an Extension whose child is itself an Extension or Leaf merges
// with it.
func (t *Trie) degenerate(n node) (node, error) {
	switch v := n.(type) {
	case *branchNode:
		count, onlyIdx := v.liveSlots()
		switch {
		case count == 1 && v.Value != nil:
			return &leafNode{Key: Path{terminatorNibble}, Val: v.Value, flags: newFlag()}, nil
		case count == 1 && v.Value == nil && onlyIdx >= 0:
			ext := &extensionNode{Key: Path{byte(onlyIdx)}, Val: v.Children[onlyIdx], flags: newFlag()}
			return t.degenerate(ext)
		default:
			return v, nil
		}

	case *extensionNode:
		switch child := v.Val.(type) {
		case *extensionNode:
			merged := &extensionNode{Key: v.Key.Join(child.Key), Val: child.Val, flags: newFlag()}
			return t.degenerate(merged)
		case *leafNode:
			return &leafNode{Key: v.Key.Join(child.Key), Val: child.Val, flags: newFlag()}, nil
		case hashNode:
			// Unlike getAt's tolerant treatment of a missing HashRef as
			// Empty, a store-miss here propagates as a decode-style error:
			// a mutation path that can no longer find a node it just
			// dereferenced indicates corruption, not something to prune.
			resolved, err := t.resolveAndTrack(child)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				return nil, errors.Wrap(ErrDecode, (&MissingNodeError{NodeHash: common.Hash(child)}).Error())
			}
			nv := v.copy()
			nv.Val = resolved
			return t.degenerate(nv)
		default:
			return v, nil
		}

	default:
		return n, nil
	}
}
