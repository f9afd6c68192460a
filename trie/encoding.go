package trie

// Path is a nibble path (C1): an ordered sequence of 4-bit nibbles (0-15)
// with an optional trailing sentinel nibble 16 marking the terminator flag
// from spec §3 — "the path reaches a value". Representing the terminator as
// a trailing sentinel nibble, rather than a separate bool field, is the
// teacher's own trick (go-ethereum's "hex" key encoding): common-prefix
// matching, slicing, and joining all fall out of ordinary slice operations
// without special-casing the flag, since nibble value 16 never collides with
// a real nibble (0-15) and so naturally stops any prefix match at the
// boundary between payload and terminator.
type Path []byte

// terminatorNibble is the conceptual 17th nibble value appended to any key
// entering the trie.
const terminatorNibble = 16

// NewPathFromRaw converts a raw byte key into its nibble expansion, high
// nibble first, optionally appending the terminator sentinel.
func NewPathFromRaw(key []byte, terminator bool) Path {
	l := len(key) * 2
	if terminator {
		l++
	}
	p := make(Path, l)
	for i, b := range key {
		p[i*2] = b / 16
		p[i*2+1] = b % 16
	}
	if terminator {
		p[l-1] = terminatorNibble
	}
	return p
}

// NewPathFromHex wraps an already-split nibble slice as a Path without
// copying interpretation logic; ownership of nibbles passes to the caller's
// discretion (the slice is used as-is).
func NewPathFromHex(nibbles []byte) Path { return Path(nibbles) }

// HasTerm reports whether p carries the terminator sentinel, i.e. whether it
// is a Leaf key (true) as opposed to an Extension prefix (false).
func (p Path) HasTerm() bool { return len(p) > 0 && p[len(p)-1] == terminatorNibble }

// Len returns the nibble count, including the terminator sentinel if
// present.
func (p Path) Len() int { return len(p) }

// At returns the nibble at index i.
func (p Path) At(i int) byte { return p[i] }

// CommonPrefixLen returns the length of the longest shared prefix of p and
// o.
func (p Path) CommonPrefixLen(o Path) int {
	n := len(p)
	if len(o) < n {
		n = len(o)
	}
	i := 0
	for ; i < n; i++ {
		if p[i] != o[i] {
			break
		}
	}
	return i
}

// Offset returns the suffix of p after dropping k leading nibbles.
func (p Path) Offset(k int) Path { return p[k:] }

// Slice returns p[i:j].
func (p Path) Slice(i, j int) Path { return p[i:j] }

// Join concatenates p with o; the terminator flag of the result is that of
// o, matching spec §4.1. A fresh backing array is always allocated so the
// result never aliases either operand's storage (mirrors the teacher's
// prefixConcat, which exists precisely to avoid corrupting a key that may be
// shared with a sibling node).
func (p Path) Join(o Path) Path {
	out := make(Path, len(p)+len(o))
	copy(out, p)
	copy(out[len(p):], o)
	return out
}

// Push appends a single nibble, returning a new Path.
func (p Path) Push(nibble byte) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = nibble
	return out
}

// Equal reports whether p and o contain the same nibbles.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of p.
func (p Path) Copy() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// EncodeRaw packs p two-nibbles-per-byte, high nibble first. It is only
// valid when p has even length excluding any terminator sentinel (i.e. the
// payload nibble count is even); spec §4.1 calls raw encoding "only used
// against paths known to be even". ok is false otherwise.
func (p Path) EncodeRaw() (data []byte, ok bool) {
	payload := p
	if payload.HasTerm() {
		payload = payload[:len(payload)-1]
	}
	if len(payload)&1 != 0 {
		return nil, false
	}
	out := make([]byte, len(payload)/2)
	for bi, ni := 0, 0; ni < len(payload); bi, ni = bi+1, ni+2 {
		out[bi] = payload[ni]<<4 | payload[ni+1]
	}
	return out, true
}

// EncodeCompact emits the two-bit-prefixed hex-prefix encoding of p, used to
// serialize Leaf keys and Extension prefixes inside their parent node.
func (p Path) EncodeCompact() []byte {
	var terminator byte
	hex := []byte(p)
	if p.HasTerm() {
		terminator = 1
		hex = hex[:len(hex)-1]
	}
	buf := make([]byte, len(hex)/2+1)
	buf[0] = terminator << 5
	if len(hex)&1 == 1 {
		buf[0] |= 1 << 4
		buf[0] |= hex[0]
		hex = hex[1:]
	}
	packNibbles(hex, buf[1:])
	return buf
}

// DecodeCompact inverts EncodeCompact, recovering both the terminator flag
// and the original nibble length.
func DecodeCompact(compact []byte) Path {
	if len(compact) == 0 {
		return Path{}
	}
	base := NewPathFromRaw(compact, true)
	if base[0] < 2 {
		// no terminator flag: this was an Extension prefix, drop the
		// sentinel NewPathFromRaw appended unconditionally.
		base = base[:len(base)-1]
	}
	chop := 2 - base[0]&1
	return base[chop:]
}

func packNibbles(nibbles, out []byte) {
	for bi, ni := 0, 0; ni < len(nibbles); bi, ni = bi+1, ni+2 {
		out[bi] = nibbles[ni]<<4 | nibbles[ni+1]
	}
}
