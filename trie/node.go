package trie

import (
	"fmt"

	"github.com/okonomi-labs/go-mpt/common"
)

// node is the algebra from spec §3 (C2): Empty, Leaf, Extension, Branch,
// HashRef. Empty is represented by the nil node interface value, the way the
// teacher represents its equivalent "no node" case — every switch over node
// variants in this package has an explicit `case nil` arm for it, so it is
// never a surprise nil-pointer dereference, it is the Empty variant.
type node interface {
	// cache returns the node's memoized digest (nil if never hashed) and
	// whether the node has been mutated since that digest was computed.
	cache() (hashNode, bool)
	fstring(string) string
}

// nodeFlag carries caching metadata shared by every mutable node variant.
type nodeFlag struct {
	hash  hashNode // memoized digest, nil if not yet computed
	dirty bool     // true if mutated since hash was memoized
}

// leafNode is spec's Leaf{key, value}: key.HasTerm() is always true.
type leafNode struct {
	Key   Path
	Val   []byte
	flags nodeFlag
}

// extensionNode is spec's Extension{prefix, child}: Key.HasTerm() is always
// false and len(Key) >= 1 (invariant 1).
type extensionNode struct {
	Key   Path
	Val   node
	flags nodeFlag
}

// branchNode is spec's Branch{children, value}. Value is nil when the
// branch has no mapping terminating at it.
type branchNode struct {
	Children [16]node
	Value    []byte
	flags    nodeFlag
}

// hashNode is spec's HashRef(digest): a child not yet materialized from the
// store.
type hashNode common.Hash

func (n *leafNode) copy() *leafNode           { c := *n; return &c }
func (n *extensionNode) copy() *extensionNode { c := *n; return &c }
func (n *branchNode) copy() *branchNode       { c := *n; return &c }

func (n *leafNode) cache() (hashNode, bool)      { return n.flags.hash, n.flags.dirty }
func (n *extensionNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n *branchNode) cache() (hashNode, bool)    { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() (hashNode, bool)       { return nil, false }

func newFlag() nodeFlag { return nodeFlag{dirty: true} }

// liveSlots counts a branch's non-empty child slots plus its own value slot,
// the count invariant 3 bounds to >= 2 away from the root.
func (n *branchNode) liveSlots() (count int, onlyIdx int) {
	onlyIdx = -1
	if n.Value != nil {
		count++
	}
	for i, c := range n.Children {
		if c != nil {
			count++
			if onlyIdx == -1 {
				onlyIdx = i
			} else {
				onlyIdx = -2
			}
		}
	}
	return count, onlyIdx
}

var nibbleIndices = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f"}

func (n *leafNode) String() string      { return n.fstring("") }
func (n *extensionNode) String() string { return n.fstring("") }
func (n *branchNode) String() string    { return n.fstring("") }
func (n hashNode) String() string       { return n.fstring("") }

func (n *leafNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %x} ", []byte(n.Key), n.Val)
}

func (n *extensionNode) fstring(ind string) string {
	child := "<nil>"
	if n.Val != nil {
		child = n.Val.fstring(ind + "  ")
	}
	return fmt.Sprintf("{%x: %v} ", []byte(n.Key), child)
}

func (n *branchNode) fstring(ind string) string {
	resp := fmt.Sprintf("[\n%s  ", ind)
	for i, child := range &n.Children {
		if child == nil {
			resp += fmt.Sprintf("%s: <nil> ", nibbleIndices[i])
		} else {
			resp += fmt.Sprintf("%s: %v", nibbleIndices[i], child.fstring(ind+"  "))
		}
	}
	if n.Value != nil {
		resp += fmt.Sprintf("value: %x ", n.Value)
	}
	return resp + fmt.Sprintf("\n%s] ", ind)
}

func (n hashNode) fstring(ind string) string {
	return fmt.Sprintf("<%x> ", common.Hash(n).Bytes())
}
