package trie

import "github.com/okonomi-labs/go-mpt/common"

// tracer implements the "stale-key" bookkeeping from spec §3/§4.5: the
// passing-keys set of digests this mutation chain has dereferenced from the
// store, and the gen-keys set of digests newly produced by the following
// commit. On commit, passing∖gen is the eviction set — nodes this mutation
// superseded that were not re-derived identically.
//
// This generalizes the teacher's trieCapture (trie_capture.go), which tracks
// insert/delete by node *path* for a path-keyed NodeSet. Spec §3 instead
// keys engine state by node *digest*, which is both simpler (no per-path
// bookkeeping survives a commit) and matches the "conservative, no store-side
// refcounts" design spec §9 describes.
type tracer struct {
	passing map[common.Hash]struct{}
	gen     map[common.Hash]struct{}
}

func newTracer() *tracer {
	return &tracer{
		passing: make(map[common.Hash]struct{}),
		gen:     make(map[common.Hash]struct{}),
	}
}

// markPassing records that digest h was dereferenced (materialized from the
// store) during the current mutation chain.
func (t *tracer) markPassing(h common.Hash) {
	t.passing[h] = struct{}{}
}

// markGen records that digest h was (re-)produced by the current commit.
func (t *tracer) markGen(h common.Hash) {
	t.gen[h] = struct{}{}
}

// evictionSet returns passing∖gen: digests superseded by this mutation that
// were not re-derived identically, and so are candidates for removal from
// the store.
func (t *tracer) evictionSet() []common.Hash {
	out := make([]common.Hash, 0, len(t.passing))
	for h := range t.passing {
		if _, ok := t.gen[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}

// reset clears both sets, as spec §4.5 step 4 requires after each commit.
func (t *tracer) reset() {
	t.passing = make(map[common.Hash]struct{})
	t.gen = make(map[common.Hash]struct{})
}
