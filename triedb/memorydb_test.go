package triedb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/triehash"
)

func digestOf(data []byte) common.Hash { return triehash.Sum256(data) }

func TestMemoryStoreGetInsertRemove(t *testing.T) {
	s := NewMemoryStore()
	data := []byte("node-blob")
	digest := digestOf(data)

	_, ok, err := s.Get(digest)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Insert(digest, data))

	got, ok, err := s.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)

	contains, err := s.Contains(digest)
	require.NoError(t, err)
	require.True(t, contains)

	require.NoError(t, s.Remove(digest))
	_, ok, err = s.Get(digest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreBatch(t *testing.T) {
	s := NewMemoryStore()
	items := map[common.Hash][]byte{
		digestOf([]byte("a")): []byte("a"),
		digestOf([]byte("b")): []byte("b"),
	}
	require.NoError(t, s.InsertBatch(items))
	for digest, want := range items {
		got, ok, err := s.Get(digest)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	digests := make([]common.Hash, 0, len(items))
	for digest := range items {
		digests = append(digests, digest)
	}
	require.NoError(t, s.RemoveBatch(digests))
	for _, digest := range digests {
		_, ok, err := s.Get(digest)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestCachingStoreServesFromCacheAndDelegates(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachingStore(inner, 16)
	require.NoError(t, err)

	data := []byte("cached-blob")
	digest := digestOf(data)

	require.NoError(t, cached.Insert(digest, data))

	got, ok, err := inner.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)

	got, ok, err = cached.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)

	require.NoError(t, cached.Remove(digest))
	_, ok, err = cached.Get(digest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCachingStoreMissPassesThrough(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachingStore(inner, 4)
	require.NoError(t, err)

	data := []byte("not cached yet")
	digest := digestOf(data)
	require.NoError(t, inner.Insert(digest, data))

	got, ok, err := cached.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestMetricsStoreDelegatesAndCounts(t *testing.T) {
	inner := NewMemoryStore()
	reg := newTestRegistry()
	wrapped := NewMetricsStore(inner, reg)

	data := []byte("metered-blob")
	digest := digestOf(data)
	require.NoError(t, wrapped.Insert(digest, data))

	got, ok, err := wrapped.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)

	require.NoError(t, wrapped.Flush())

	families, err := reg.Gather()
	require.NoError(t, err)
	calls := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "okonomi_trie_store_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "method" {
					calls[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, map[string]float64{"insert": 1, "get": 1, "flush": 1}, calls)
}

func TestOpenBuildsLayeredStore(t *testing.T) {
	store, err := Open(Config{CacheSize: 8, Metrics: newTestRegistry()})
	require.NoError(t, err)

	data := []byte("layered")
	digest := digestOf(data)
	require.NoError(t, store.Insert(digest, data))
	got, ok, err := store.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}
