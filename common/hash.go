// Package common holds the small value types shared across the trie engine,
// its codec, and its store adapters: a fixed-size digest and a few byte-slice
// helpers. It plays the same role the teacher repo's "common" package does
// for go-ethereum's trie package, trimmed to what this module actually needs.
package common

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the width in bytes of the digest the trie engine addresses
// nodes by. The reference configuration is Keccak-256.
const HashLength = 32

// Hash is a 32-byte content digest, used both as a node reference inside the
// trie and as the key under which a node's encoding is stored in the blob
// store.
type Hash [HashLength]byte

// BytesToHash sets the last bytes of b into a Hash, left-padding or
// truncating from the left as needed, mirroring go-ethereum's common.Hash
// construction helper.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash interprets s as a hex string (with or without a 0x prefix) and
// returns the corresponding Hash.
func HexToHash(s string) Hash {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("common: invalid hex hash %q: %v", s, err))
	}
	return BytesToHash(b)
}

// Bytes returns a copy of h as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether h is the all-zero digest, which this module uses as
// the sentinel "no hash" value (distinct from the empty-trie digest).
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// CopyBytes returns an independent copy of b, or nil if b is empty.
func CopyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
