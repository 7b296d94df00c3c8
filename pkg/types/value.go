package types

import (
	"bytes"
	"encoding/hex"
	"slices"
	"strings"
)

// ValueTag names the variant held by a TypedValue.
type ValueTag uint8

const (
	TagInteger ValueTag = iota + 1
	TagString
	TagStrings
	TagBytes
)

func (t ValueTag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagString:
		return "string"
	case TagStrings:
		return "strings"
	case TagBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// TypedValue is the coerced payload of a directive. The set of variants is
// closed: Integer, String, Strings and Bytes.
type TypedValue interface {
	Tag() ValueTag
	isTyped()
}

// Integer holds REG_DWORD and REG_QWORD data. REG_QWORD values above
// math.MaxInt64 are held as their two's-complement bit pattern.
type Integer int64

// String holds REG_SZ and REG_EXPAND_SZ data.
type String string

// Strings holds REG_MULTI_SZ data.
type Strings []string

// Bytes holds REG_BINARY data.
type Bytes []byte

func (Integer) Tag() ValueTag { return TagInteger }
func (String) Tag() ValueTag  { return TagString }
func (Strings) Tag() ValueTag { return TagStrings }
func (Bytes) Tag() ValueTag   { return TagBytes }

func (Integer) isTyped() {}
func (String) isTyped()  {}
func (Strings) isTyped() {}
func (Bytes) isTyped()   {}

// String renders bytes as upper-case hex, the form scripts use.
func (b Bytes) String() string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// EqualValues reports whether a and b hold the same variant and data.
func EqualValues(a, b TypedValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Strings:
		bv, ok := b.(Strings)
		return ok && slices.Equal(av, bv)
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	}
	return false
}
