package trie

import (
	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/rlp"
)

// decodeNode implements C3's decoding rules. known, if non-nil, is the
// digest this blob was fetched under; it is memoized onto the resulting
// node's flags so the committer can skip re-hashing an unchanged node
// (nodes reached via an embedded/inlined reference instead pass known=nil,
// since they have no digest of their own — spec's inlining threshold means
// they're never independently addressable).
func decodeNode(buf []byte, known *common.Hash) (node, error) {
	if len(buf) == 0 {
		return nil, decodeErrorf("empty node blob")
	}
	if len(buf) == 1 && buf[0] == 0x80 {
		return nil, nil // Empty
	}
	elems, _, err := rlp.SplitList(buf)
	if err != nil {
		return nil, decodeErrorf("invalid node rlp: %v", err)
	}
	count, err := rlp.CountValues(elems)
	if err != nil {
		return nil, decodeErrorf("invalid node rlp: %v", err)
	}
	switch count {
	case 2:
		return decodeTwoList(elems, known)
	case 17:
		return decodeBranch(elems, known)
	default:
		return nil, invalidDataErrorf("invalid number of list elements: %d", count)
	}
}

func flagFor(known *common.Hash) nodeFlag {
	if known == nil {
		return nodeFlag{}
	}
	return nodeFlag{hash: hashNode(*known)}
}

func decodeTwoList(elems []byte, known *common.Hash) (node, error) {
	kbuf, rest, err := rlp.SplitString(elems)
	if err != nil {
		return nil, decodeErrorf("invalid node key: %v", err)
	}
	key := DecodeCompact(kbuf)
	flag := flagFor(known)
	if key.HasTerm() {
		val, _, err := rlp.SplitString(rest)
		if err != nil {
			return nil, decodeErrorf("invalid leaf value: %v", err)
		}
		return &leafNode{Key: key, Val: common.CopyBytes(val), flags: flag}, nil
	}
	child, _, err := decodeRef(rest)
	if err != nil {
		return nil, err
	}
	if child == nil || key.Len() == 0 {
		return nil, invalidDataErrorf("extension node with empty prefix or child")
	}
	return &extensionNode{Key: key, Val: child, flags: flag}, nil
}

func decodeBranch(elems []byte, known *common.Hash) (*branchNode, error) {
	n := &branchNode{flags: flagFor(known)}
	for i := 0; i < 16; i++ {
		cld, rest, err := decodeRef(elems)
		if err != nil {
			return nil, invalidDataErrorf("branch child %d: %v", i, err)
		}
		n.Children[i], elems = cld, rest
	}
	val, _, err := rlp.SplitString(elems)
	if err != nil {
		return nil, decodeErrorf("invalid branch value: %v", err)
	}
	if len(val) > 0 {
		n.Value = common.CopyBytes(val)
	}
	return n, nil
}

// decodeRef decodes one child reference: an embedded (inlined) node, the
// canonical empty value, or a 32-byte digest that decodes as a HashRef.
func decodeRef(buf []byte) (node, []byte, error) {
	kind, val, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, buf, decodeErrorf("invalid reference: %v", err)
	}
	switch {
	case kind == rlp.List:
		size := len(buf) - len(rest)
		if size >= common.HashLength {
			return nil, buf, invalidDataErrorf("oversized embedded node (%d bytes, want < %d)", size, common.HashLength)
		}
		n, err := decodeNode(buf[:size], nil)
		return n, rest, err
	case len(val) == 0:
		return nil, rest, nil
	case len(val) == common.HashLength:
		return hashNode(common.BytesToHash(val)), rest, nil
	default:
		return nil, buf, invalidDataErrorf("invalid reference size %d (want 0 or %d)", len(val), common.HashLength)
	}
}
