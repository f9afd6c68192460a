package trie

import (
	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/rlp"
	"github.com/okonomi-labs/go-mpt/triehash"
)

// inlineThreshold is the digest width: child encodings strictly shorter than
// this are spliced into their parent rather than addressed by digest (spec
// glossary, "Inlining threshold").
const inlineThreshold = common.HashLength

// nodeEncoder implements C3's canonical encoding, including the child
// reference rule that decides whether a child is inlined or referenced by
// digest. Every digest it mints along the way (every child hashed because
// its encoding reached 32 bytes) is recorded into pending (to be flushed to
// the store) and gen (so the committer's eviction pass never removes a node
// this very commit just re-derived).
type nodeEncoder struct {
	hasher  *triehash.Hasher
	pending map[common.Hash][]byte
	gen     *tracer
}

func newNodeEncoder(gen *tracer) *nodeEncoder {
	return &nodeEncoder{
		hasher:  triehash.NewHasher(),
		pending: make(map[common.Hash][]byte),
		gen:     gen,
	}
}

// encode returns the canonical RLP encoding of n. Empty encodes as
// rlp.Empty, the codec's NULL value (spec §4.2).
func (e *nodeEncoder) encode(n node) []byte {
	switch v := n.(type) {
	case nil:
		return rlp.Empty
	case *leafNode:
		w := rlp.NewEncoderBuffer()
		idx := w.List()
		w.WriteBytes(v.Key.EncodeCompact())
		w.WriteBytes(v.Val)
		w.ListEnd(idx)
		return w.ToBytes()
	case *extensionNode:
		childRef := e.encodeChildRef(v.Val)
		w := rlp.NewEncoderBuffer()
		idx := w.List()
		w.WriteBytes(v.Key.EncodeCompact())
		w.WriteRaw(childRef)
		w.ListEnd(idx)
		return w.ToBytes()
	case *branchNode:
		w := rlp.NewEncoderBuffer()
		idx := w.List()
		for i := 0; i < 16; i++ {
			w.WriteRaw(e.encodeChildRef(v.Children[i]))
		}
		w.WriteBytes(v.Value)
		w.ListEnd(idx)
		return w.ToBytes()
	case hashNode:
		// The child reference rule always intercepts HashRef before
		// reaching a generic encode call; a HashRef never has its own
		// top-level encoding (spec §4.2).
		panic("trie: encode called directly on a HashRef")
	default:
		panic("trie: encode of unknown node type")
	}
}

// encodeChildRef implements the child reference rule of spec §4.2: encode
// the child, and either splice it in raw (<32 bytes) or hash it and record
// the (digest, bytes) pair for the pending write-out (>=32 bytes).
func (e *nodeEncoder) encodeChildRef(child node) []byte {
	if child == nil {
		return rlp.Empty
	}
	if hn, ok := child.(hashNode); ok {
		return rlp.EncodeBytes(common.Hash(hn).Bytes())
	}
	// Unchanged since it was last hashed: reuse its digest without
	// re-encoding or re-storing it, matching spec §6's "idempotent: calling
	// twice ... flushes nothing the second time".
	if hash, dirty := child.cache(); hash != nil && !dirty {
		return rlp.EncodeBytes(common.Hash(hash).Bytes())
	}
	enc := e.encode(child)
	if len(enc) < inlineThreshold {
		return enc
	}
	digest := e.hasher.Sum(enc)
	e.pending[digest] = common.CopyBytes(enc)
	if e.gen != nil {
		e.gen.markGen(digest)
	}
	return rlp.EncodeBytes(digest.Bytes())
}
