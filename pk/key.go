// Package pk maps user-facing primary keys to the internal slots used by
// vector indexes.
//
// A Key is either a uint64 or a string; both are common as external
// identifiers and neither should force the other into an awkward encoding.
package pk

import (
	"fmt"
	"strconv"
)

// Kind identifies the concrete type held by a Key.
type Kind uint8

const (
	// KindInvalid represents the zero Key.
	KindInvalid Kind = iota
	// KindUint64 represents an integer key.
	KindUint64
	// KindString represents a string key.
	KindString
)

// Key is the user-facing stable identifier of an entry.
// Keys are comparable and usable as map keys.
type Key struct {
	kind Kind
	u64  uint64
	str  string
}

// Uint64Key creates an integer Key.
func Uint64Key(v uint64) Key { return Key{kind: KindUint64, u64: v} }

// StringKey creates a string Key.
func StringKey(v string) Key { return Key{kind: KindString, str: v} }

// Kind returns the kind of the key.
func (k Key) Kind() Kind { return k.kind }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.kind == KindInvalid }

// Uint64 returns the integer value if the key is an integer key.
func (k Key) Uint64() (uint64, bool) {
	if k.kind != KindUint64 {
		return 0, false
	}
	return k.u64, true
}

// StringValue returns the string value if the key is a string key.
func (k Key) StringValue() (string, bool) {
	if k.kind != KindString {
		return "", false
	}
	return k.str, true
}

// String implements fmt.Stringer.
func (k Key) String() string {
	switch k.kind {
	case KindUint64:
		return strconv.FormatUint(k.u64, 10)
	case KindString:
		return k.str
	default:
		return fmt.Sprintf("invalid-key(%d)", k.kind)
	}
}
