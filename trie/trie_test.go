package trie

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okonomi-labs/go-mpt/rlp"
	"github.com/okonomi-labs/go-mpt/triedb"
)

func newTestTrie(t *testing.T) *Trie {
	t.Helper()
	return New(triedb.NewMemoryStore())
}

func TestEmptyTrieRoot(t *testing.T) {
	tr := newTestTrie(t)
	root, err := tr.Root()
	require.NoError(t, err)
	require.Equal(t, emptyRootHash, root)
}

func TestGetAfterInsert(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("dogglesworth"), []byte("cat")))

	val, ok, err := tr.Get([]byte("dog"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("puppy"), val)

	_, ok, err = tr.Get([]byte("nonexistent"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsertOverwrite(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert([]byte("key"), []byte("value1")))
	require.NoError(t, tr.Insert([]byte("key"), []byte("value2")))

	val, ok, err := tr.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value2"), val)
}

func TestInsertEmptyValueIsRemove(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert([]byte("key"), []byte("value")))
	require.NoError(t, tr.Insert([]byte("key"), []byte{}))

	_, ok, err := tr.Get([]byte("key"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemove(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))

	deleted, err := tr.Remove([]byte("dog"))
	require.NoError(t, err)
	require.True(t, deleted)

	_, ok, err := tr.Get([]byte("dog"))
	require.NoError(t, err)
	require.False(t, ok)

	val, ok, err := tr.Get([]byte("doge"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("coin"), val)
}

func TestRemoveIsIdempotent(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert([]byte("key"), []byte("value")))

	deleted, err := tr.Remove([]byte("key"))
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = tr.Remove([]byte("key"))
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestRootDeterministic(t *testing.T) {
	build := func() (*Trie, error) {
		tr := New(triedb.NewMemoryStore())
		if err := tr.Insert([]byte("a"), []byte("1")); err != nil {
			return nil, err
		}
		if err := tr.Insert([]byte("b"), []byte("2")); err != nil {
			return nil, err
		}
		if err := tr.Insert([]byte("c"), []byte("3")); err != nil {
			return nil, err
		}
		return tr, nil
	}
	t1, err := build()
	require.NoError(t, err)
	r1, err := t1.Root()
	require.NoError(t, err)

	t2, err := build()
	require.NoError(t, err)
	r2, err := t2.Root()
	require.NoError(t, err)

	require.Equal(t, r1, r2)
}

func TestRootOrderIndependent(t *testing.T) {
	store := triedb.NewMemoryStore()
	t1 := New(store)
	require.NoError(t, t1.Insert([]byte("aaa"), []byte("1")))
	require.NoError(t, t1.Insert([]byte("bbb"), []byte("2")))
	r1, err := t1.Root()
	require.NoError(t, err)

	store2 := triedb.NewMemoryStore()
	t2 := New(store2)
	require.NoError(t, t2.Insert([]byte("bbb"), []byte("2")))
	require.NoError(t, t2.Insert([]byte("aaa"), []byte("1")))
	r2, err := t2.Root()
	require.NoError(t, err)

	require.Equal(t, r1, r2)
}

func TestRootRoundTrip(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))
	require.NoError(t, tr.Insert([]byte("horse"), []byte("stallion")))
	root, err := tr.Root()
	require.NoError(t, err)

	reloaded, err := From(store, root)
	require.NoError(t, err)

	val, ok, err := reloaded.Get([]byte("doge"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("coin"), val)
}

func TestRootIdempotentFlushesNothingTwice(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	require.NoError(t, tr.Insert([]byte("a"), []byte("1")))
	r1, err := tr.Root()
	require.NoError(t, err)
	// Drop the stored root so any write by the second call would show up.
	require.NoError(t, store.Remove(r1))
	r2, err := tr.Root()
	require.NoError(t, err)
	require.Equal(t, r1, r2)
	rewritten, err := store.Contains(r1)
	require.NoError(t, err)
	require.False(t, rewritten, "second Root must not write anything")
}

func TestFromUnknownRootErrors(t *testing.T) {
	store := triedb.NewMemoryStore()
	_, err := From(store, emptyRootHash)
	require.NoError(t, err)

	bogus := emptyRootHash
	bogus[0] ^= 0xff
	_, err = From(store, bogus)
	require.Error(t, err)
}

func TestManyInsertsAndDeletes(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	const n = 200
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%04d", i))
		require.NoError(t, tr.Insert(key, []byte(fmt.Sprintf("value-%d", i))))
	}
	for i := 0; i < n; i += 2 {
		key := []byte(fmt.Sprintf("key-%04d", i))
		deleted, err := tr.Remove(key)
		require.NoError(t, err)
		require.True(t, deleted)
	}
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%04d", i))
		val, ok, err := tr.Get(key)
		require.NoError(t, err)
		if i%2 == 0 {
			require.False(t, ok, "key %s should be gone", key)
		} else {
			require.True(t, ok, "key %s should remain", key)
			require.Equal(t, []byte(fmt.Sprintf("value-%d", i)), val)
		}
	}
	_, err := tr.Root()
	require.NoError(t, err)
}

func TestIteratorVisitsEveryKeyInOrder(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	keys := []string{"dog", "doge", "horse", "cat", "apple", "application"}
	want := make(map[string]string)
	for _, k := range keys {
		require.NoError(t, tr.Insert([]byte(k), []byte(k+"-value")))
		want[k] = k + "-value"
	}

	it := tr.Iterator()
	got := make(map[string]string)
	var lastKey []byte
	for it.Next() {
		if lastKey != nil {
			require.True(t, string(lastKey) < string(it.Key()), "iteration must be ordered")
		}
		got[string(it.Key())] = string(it.Value())
		lastKey = append([]byte{}, it.Key()...)
	}
	require.NoError(t, it.Err())
	require.Equal(t, want, got)
}

func TestProveAndVerify(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))
	require.NoError(t, tr.Insert([]byte("horse"), []byte("stallion")))
	root, err := tr.Root()
	require.NoError(t, err)

	proof, err := tr.Prove([]byte("doge"))
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	val, ok, err := VerifyProof(root, []byte("doge"), proof)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("coin"), val)
}

func TestVerifyProofExclusion(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))
	root, err := tr.Root()
	require.NoError(t, err)

	proof, err := tr.Prove([]byte("cat"))
	require.NoError(t, err)

	_, ok, err := VerifyProof(root, []byte("cat"), proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyProofRejectsTamperedNode(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))
	require.NoError(t, tr.Insert([]byte("horse"), []byte("stallion")))
	root, err := tr.Root()
	require.NoError(t, err)

	proof, err := tr.Prove([]byte("doge"))
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	tampered := make([][]byte, len(proof))
	copy(tampered, proof)
	last := append([]byte{}, tampered[len(tampered)-1]...)
	last[0] ^= 0xff
	tampered[len(tampered)-1] = last

	_, _, err = VerifyProof(root, []byte("doge"), tampered)
	require.Error(t, err)
}

func TestRootTwiceFromEmptyIsIdempotent(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	r1, err := tr.Root()
	require.NoError(t, err)
	require.Equal(t, emptyRootHash, r1)
	r2, err := tr.Root()
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestDeletingBackToEmptyPrunesEverythingButEmptyRoot(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	const n = 32
	keys := make([][]byte, n)
	for i := 0; i < n; i++ {
		keys[i] = []byte(fmt.Sprintf("prune-%03d", i))
		require.NoError(t, tr.Insert(keys[i], []byte(fmt.Sprintf("v%d", i))))
	}
	full, err := tr.Root()
	require.NoError(t, err)

	for _, k := range keys {
		deleted, err := tr.Remove(k)
		require.NoError(t, err)
		require.True(t, deleted)
	}
	root, err := tr.Root()
	require.NoError(t, err)
	require.Equal(t, emptyRootHash, root)

	ok, err := store.Contains(emptyRootHash)
	require.NoError(t, err)
	require.True(t, ok, "store must retain keccak(NULL) for the empty root")

	blob, ok, err := store.Get(emptyRootHash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rlp.Empty, blob)

	ok, err = store.Contains(full)
	require.NoError(t, err)
	require.False(t, ok, "the superseded non-empty root must be pruned")
}

func TestStalePruningEvictsSupersededNodes(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	for i := 0; i < 64; i++ {
		key := []byte(fmt.Sprintf("stress-%03d", i))
		require.NoError(t, tr.Insert(key, []byte(fmt.Sprintf("v%d", i))))
	}
	oldRoot, err := tr.Root()
	require.NoError(t, err)

	for i := 0; i < 64; i += 3 {
		key := []byte(fmt.Sprintf("stress-%03d", i))
		v := []byte(fmt.Sprintf("updated-%d", i))
		require.NoError(t, tr.Insert(key, v))
	}
	root, err := tr.Root()
	require.NoError(t, err)

	stale, err := store.Contains(oldRoot)
	require.NoError(t, err)
	require.False(t, stale, "the superseded root must be evicted")

	reloaded, err := From(store, root)
	require.NoError(t, err)
	val, ok, err := reloaded.Get([]byte("stress-003"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("updated-3"), val)
}
