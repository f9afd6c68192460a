// Package rlp implements the canonical recursive length-prefixed list codec
// spec §6 calls the "recursive list encoder": a self-delimiting encoding for
// byte strings and lists of values, with no type information beyond "string"
// or "list". It is the concrete instantiation of the abstract codec the trie
// package's node encoder/decoder (C3) is written against, grounded on the
// encoding every repo in the retrieval pack that touches an Ethereum trie
// uses for this exact purpose.
package rlp

import (
	"errors"
	"fmt"
	"io"
)

// Kind identifies whether a decoded RLP value is a byte string or a list.
type Kind int

const (
	// Byte is a single byte in [0x00, 0x7f], encoded as itself.
	Byte Kind = iota
	// String is a byte string (including the empty string, RLP's NULL).
	String
	// List is an ordered sequence of RLP values.
	List
)

// Empty is the canonical "NULL" encoding: the zero-length byte string. Spec
// §4.2 requires this exact value as the encoding of an Empty trie node and
// spec §6 requires it be available as a primitive of the codec.
var Empty = []byte{0x80}

// EmptyList is the canonical empty-list encoding, used nowhere in this
// module's node encoding but kept for symmetry with Empty.
var EmptyList = []byte{0xc0}

var (
	// ErrExpectedString is returned by SplitString when the head byte marks
	// a list.
	ErrExpectedString = errors.New("rlp: expected string or byte")
	// ErrExpectedList is returned by SplitList when the head byte marks a
	// string.
	ErrExpectedList = errors.New("rlp: expected list")
	// ErrUnexpectedEOF mirrors io.ErrUnexpectedEOF for empty inputs.
	ErrUnexpectedEOF = io.ErrUnexpectedEOF
)

// Split decodes the kind, content, and remaining bytes of the first RLP
// value in b.
func Split(b []byte) (k Kind, content, rest []byte, err error) {
	if len(b) == 0 {
		return 0, nil, nil, ErrUnexpectedEOF
	}
	prefix := b[0]
	switch {
	case prefix < 0x80:
		return Byte, b[:1], b[1:], nil
	case prefix < 0xb8:
		size := int(prefix - 0x80)
		return splitString(b, 1, size)
	case prefix < 0xc0:
		sizeLen := int(prefix - 0xb7)
		size, rest, err := readSize(b[1:], sizeLen)
		if err != nil {
			return 0, nil, nil, err
		}
		return splitString(b, 1+sizeLen, size, rest)
	case prefix < 0xf8:
		size := int(prefix - 0xc0)
		return splitList(b, 1, size)
	default:
		sizeLen := int(prefix - 0xf7)
		size, rest, err := readSize(b[1:], sizeLen)
		if err != nil {
			return 0, nil, nil, err
		}
		return splitList(b, 1+sizeLen, size, rest)
	}
}

func readSize(b []byte, sizeLen int) (size int, rest []byte, err error) {
	if len(b) < sizeLen {
		return 0, nil, ErrUnexpectedEOF
	}
	for _, c := range b[:sizeLen] {
		size = size<<8 | int(c)
	}
	return size, b[sizeLen:], nil
}

func splitString(b []byte, headerLen, size int, precomputedRest ...[]byte) (Kind, []byte, []byte, error) {
	var rest []byte
	if len(precomputedRest) == 1 {
		rest = precomputedRest[0]
	} else {
		rest = b[headerLen:]
	}
	if len(rest) < size {
		return 0, nil, nil, ErrUnexpectedEOF
	}
	return String, rest[:size], rest[size:], nil
}

func splitList(b []byte, headerLen, size int, precomputedRest ...[]byte) (Kind, []byte, []byte, error) {
	var rest []byte
	if len(precomputedRest) == 1 {
		rest = precomputedRest[0]
	} else {
		rest = b[headerLen:]
	}
	if len(rest) < size {
		return 0, nil, nil, ErrUnexpectedEOF
	}
	return List, rest[:size], rest[size:], nil
}

// SplitString decodes the content and remainder of a string value, erroring
// if the head byte marks a list.
func SplitString(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if k == List {
		return nil, nil, ErrExpectedString
	}
	return content, rest, nil
}

// SplitList decodes the content and remainder of a list value, erroring if
// the head byte marks a string.
func SplitList(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if k != List {
		return nil, nil, ErrExpectedList
	}
	return content, rest, nil
}

// CountValues counts the number of top-level RLP values encoded back to back
// in b (e.g. the elements of a list's already-split content).
func CountValues(b []byte) (int, error) {
	i := 0
	for ; len(b) > 0; i++ {
		_, _, rest, err := Split(b)
		if err != nil {
			return 0, err
		}
		b = rest
	}
	return i, nil
}

// EncoderBuffer accumulates an RLP encoding. Lists are opened with List and
// closed with ListEnd; everything written in between becomes that list's
// payload, with the header size patched in on ListEnd. This mirrors the
// encode-then-patch buffer design the teacher's node encoder is written
// against.
type EncoderBuffer struct {
	str    []byte
	lheads []listhead
	lhsize int
}

type listhead struct {
	offset int // index of this header in str
	size   int // size of the payload
}

// NewEncoderBuffer returns a ready-to-use encoder buffer.
func NewEncoderBuffer() *EncoderBuffer {
	return &EncoderBuffer{}
}

// Reset clears the buffer for reuse.
func (w *EncoderBuffer) Reset() {
	w.str = w.str[:0]
	w.lheads = w.lheads[:0]
	w.lhsize = 0
}

// WriteBytes appends b as an RLP string value (empty b encodes as rlp.Empty,
// satisfying the codec's NULL primitive).
func (w *EncoderBuffer) WriteBytes(b []byte) {
	if len(b) == 1 && b[0] <= 0x7f {
		w.str = append(w.str, b[0])
		return
	}
	w.encodeStringHeader(len(b))
	w.str = append(w.str, b...)
}

// WriteRaw appends an already-RLP-encoded item verbatim. It is used to embed
// a child's complete encoding (string or list) into a parent item without
// re-wrapping it, exactly the "splice it in raw" case of spec §4.2's child
// reference rule.
func (w *EncoderBuffer) WriteRaw(b []byte) {
	w.str = append(w.str, b...)
}

func (w *EncoderBuffer) encodeStringHeader(size int) {
	if size < 56 {
		w.str = append(w.str, 0x80+byte(size))
		return
	}
	sizeBytes := putSize(size)
	w.str = append(w.str, 0xb7+byte(len(sizeBytes)))
	w.str = append(w.str, sizeBytes...)
}

func putSize(size int) []byte {
	var buf [8]byte
	i := 8
	for size > 0 {
		i--
		buf[i] = byte(size)
		size >>= 8
	}
	return buf[i:]
}

// List opens a new list and returns an index to pass to ListEnd.
func (w *EncoderBuffer) List() int {
	w.lheads = append(w.lheads, listhead{offset: len(w.str), size: w.lhsize})
	return len(w.lheads) - 1
}

// ListEnd closes the list opened by the List call that returned index.
func (w *EncoderBuffer) ListEnd(index int) {
	lh := w.lheads[index]
	size := len(w.str) - lh.offset
	if size < 56 {
		header := []byte{0xc0 + byte(size)}
		w.str = append(w.str[:lh.offset], append(header, w.str[lh.offset:]...)...)
	} else {
		sizeBytes := putSize(size)
		header := append([]byte{0xf7 + byte(len(sizeBytes))}, sizeBytes...)
		w.str = append(w.str[:lh.offset], append(header, w.str[lh.offset:]...)...)
	}
	w.lheads = w.lheads[:index]
}

// ToBytes returns the final encoding. The buffer must have no unclosed
// lists.
func (w *EncoderBuffer) ToBytes() []byte {
	if len(w.lheads) != 0 {
		panic(fmt.Sprintf("rlp: %d unclosed list(s)", len(w.lheads)))
	}
	out := make([]byte, len(w.str))
	copy(out, w.str)
	return out
}

// EncodeList encodes items, each already-RLP-encoded, as a single list
// value, for callers that don't need the incremental List API.
func EncodeList(items ...[]byte) []byte {
	w := NewEncoderBuffer()
	idx := w.List()
	for _, it := range items {
		w.str = append(w.str, it...)
	}
	w.ListEnd(idx)
	return w.ToBytes()
}

// EncodeBytes returns the RLP string encoding of b.
func EncodeBytes(b []byte) []byte {
	w := NewEncoderBuffer()
	w.WriteBytes(b)
	return w.ToBytes()
}
