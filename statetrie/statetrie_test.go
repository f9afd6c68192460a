package statetrie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okonomi-labs/go-mpt/common"
	"github.com/okonomi-labs/go-mpt/triedb"
	"github.com/okonomi-labs/go-mpt/triehash"
)

func TestTrieHashKeyedGetInsert(t *testing.T) {
	tr := New(triedb.NewMemoryStore())
	key := common.HexToHash("0x01")
	require.NoError(t, tr.Insert(key, []byte("balance:100")))

	val, ok, err := tr.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("balance:100"), val)
}

func TestTrieRootRoundTrip(t *testing.T) {
	store := triedb.NewMemoryStore()
	tr := New(store)
	key := common.HexToHash("0x02")
	require.NoError(t, tr.Insert(key, []byte("value")))
	root, err := tr.Root()
	require.NoError(t, err)

	reloaded, err := From(store, root)
	require.NoError(t, err)
	val, ok, err := reloaded.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), val)
}

func TestSecureTrieRecoversPreimage(t *testing.T) {
	st := NewSecure(triedb.NewMemoryStore())
	key := []byte("0xabc-account-address")
	require.NoError(t, st.Insert(key, []byte("nonce:1")))

	val, ok, err := st.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("nonce:1"), val)

	hashed := triehash.Sum256(key)
	recovered, ok := st.GetKey(hashed)
	require.True(t, ok)
	require.Equal(t, key, recovered)
}

func TestSecureTrieUnknownKeyNotRecovered(t *testing.T) {
	st := NewSecure(triedb.NewMemoryStore())
	_, ok := st.GetKey(common.HexToHash("0xdead"))
	require.False(t, ok)
}

func TestSecureTrieRemove(t *testing.T) {
	st := NewSecure(triedb.NewMemoryStore())
	key := []byte("account")
	require.NoError(t, st.Insert(key, []byte("v")))

	deleted, err := st.Remove(key)
	require.NoError(t, err)
	require.True(t, deleted)

	_, ok, err := st.Get(key)
	require.NoError(t, err)
	require.False(t, ok)
}
