package trie

import "github.com/okonomi-labs/go-mpt/common"

// frameStatus tracks where a stack frame is in its own traversal: Start (not
// yet visited), Doing (children/value partially visited), or finished and
// ready to pop.
type frameStatus int

const (
	statusStart frameStatus = iota
	statusDoing
)

// frame is one level of the iterator's explicit DFS stack, replacing what a
// recursive walk would keep on the call stack: the node at this level, the
// nibble path consumed to reach it, and how far traversal has gotten through
// its children.
type frame struct {
	n         node
	path      Path
	status    frameStatus
	childIdx  int
	valueDone bool
}

// Iterator performs a depth-first, lexicographically-ordered walk of every
// key/value pair live in the trie at the moment it was created. It is driven
// by an explicit stack of frames rather than recursion, so traversal can be
// paused and resumed one pair at a time.
//
// A branch's own value belongs to a key that is a byte-prefix of every key
// below that branch, so it is visited before any of its sixteen children:
// that ordering is exactly byte-lexicographic order on the original keys.
type Iterator struct {
	t     *Trie
	stack []*frame
	key   []byte
	value []byte
	err   error
}

// Iterator returns a new iterator rooted at the trie's current root.
func (t *Trie) Iterator() *Iterator {
	it := &Iterator{t: t}
	if t.root != nil {
		it.stack = append(it.stack, &frame{n: t.root, status: statusStart})
	}
	return it
}

// Next advances to the next key/value pair, returning false when exhausted
// or on error (check Err to distinguish the two).
func (it *Iterator) Next() bool {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		switch n := top.n.(type) {
		case nil:
			it.stack = it.stack[:len(it.stack)-1]

		case *leafNode:
			if top.status == statusStart {
				top.status = statusDoing
				fullPath := top.path.Join(n.Key)
				raw, ok := fullPath.EncodeRaw()
				if !ok {
					it.err = decodeErrorf("iterator: leaf path %x is not byte-aligned", []byte(fullPath))
					return false
				}
				it.key = raw
				it.value = common.CopyBytes(n.Val)
				it.stack = it.stack[:len(it.stack)-1]
				return true
			}
			it.stack = it.stack[:len(it.stack)-1]

		case *extensionNode:
			if top.status == statusStart {
				top.status = statusDoing
				childPath := top.path.Join(n.Key)
				it.stack = append(it.stack, &frame{n: n.Val, path: childPath, status: statusStart})
				continue
			}
			it.stack = it.stack[:len(it.stack)-1]

		case *branchNode:
			if top.status == statusStart {
				top.status = statusDoing
				top.childIdx = 0
			}
			if n.Value != nil && !top.valueDone {
				top.valueDone = true
				fullPath := top.path.Push(terminatorNibble)
				raw, ok := fullPath.EncodeRaw()
				if !ok {
					it.err = decodeErrorf("iterator: branch value path %x is not byte-aligned", []byte(fullPath))
					return false
				}
				it.key = raw
				it.value = common.CopyBytes(n.Value)
				return true
			}
			if top.childIdx < 16 {
				idx := top.childIdx
				top.childIdx++
				child := n.Children[idx]
				if child == nil {
					continue
				}
				childPath := top.path.Push(byte(idx))
				it.stack = append(it.stack, &frame{n: child, path: childPath, status: statusStart})
				continue
			}
			it.stack = it.stack[:len(it.stack)-1]

		case hashNode:
			resolved, err := it.t.resolveForRead(n)
			if err != nil {
				it.err = err
				return false
			}
			top.n = resolved
			top.status = statusStart

		default:
			it.stack = it.stack[:len(it.stack)-1]
		}
	}
	return false
}

// Key returns the raw byte key of the pair Next last yielded.
func (it *Iterator) Key() []byte { return it.key }

// Value returns the value of the pair Next last yielded.
func (it *Iterator) Value() []byte { return it.value }

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }
