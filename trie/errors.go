package trie

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/okonomi-labs/go-mpt/common"
)

// Sentinel error kinds from spec §7. Callers use errors.Is against these;
// the concrete error values returned also carry call-site context via
// github.com/pkg/errors wrapping, so errors.Cause recovers the sentinel.
var (
	// ErrDecode marks a malformed node blob encountered during
	// materialization.
	ErrDecode = errors.New("trie: decode error")
	// ErrInvalidData marks a decoded element that matches no node shape.
	ErrInvalidData = errors.New("trie: invalid data")
	// ErrInvalidStateRoot marks a From() call whose root digest is absent
	// from the store.
	ErrInvalidStateRoot = errors.New("trie: invalid state root")
	// ErrInvalidProof marks a VerifyProof call that could not construct or
	// traverse a trie from the supplied proof nodes.
	ErrInvalidProof = errors.New("trie: invalid proof")
)

// MissingNodeError describes a HashRef digest the store does not hold. It is
// not returned on its own: its message is wrapped into ErrInvalidStateRoot
// when From() cannot find the root, and into ErrDecode when degenerate cannot
// find an extension's child. During ordinary descent a missing digest is
// treated as Empty and no error is produced.
type MissingNodeError struct {
	NodeHash common.Hash // digest of the missing node
	Path     []byte      // nibble path from the root to the missing node
	Err      error       // underlying store error, if any
}

func (e *MissingNodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing trie node %s (path %x): %v", e.NodeHash, e.Path, e.Err)
	}
	return fmt.Sprintf("missing trie node %s (path %x)", e.NodeHash, e.Path)
}

func (e *MissingNodeError) Unwrap() error { return e.Err }

func decodeErrorf(format string, args ...interface{}) error {
	return errors.Wrap(ErrDecode, fmt.Sprintf(format, args...))
}

func invalidDataErrorf(format string, args ...interface{}) error {
	return errors.Wrap(ErrInvalidData, fmt.Sprintf(format, args...))
}
