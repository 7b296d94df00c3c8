// Package coerce converts the raw payload text of a directive into a typed
// value according to its declared kind, and renders typed values back into
// payload text.
package coerce

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/joshuapare/regapply/pkg/types"
)

// MultiTextSeparator is the two-character marker that separates REG_MULTI_SZ
// elements in a payload: a backslash followed by the digit zero.
const MultiTextSeparator = `\0`

// Coerce converts raw to the TypedValue required by kind. It is pure; errors
// are *types.Error of kind ErrKindMalformedValue (or ErrKindUnsupportedType
// for a kind outside the supported set) without location, which callers fill in.
func Coerce(kind types.ValueKind, raw string) (types.TypedValue, error) {
	switch kind {
	case types.Text, types.ExpandableText:
		return types.String(raw), nil
	case types.MultiText:
		return types.Strings(strings.Split(raw, MultiTextSeparator)), nil
	case types.Binary:
		return coerceBinary(raw)
	case types.Integer32:
		n, err := parseInteger(raw, math.MinInt32, math.MaxUint32)
		if err != nil {
			return nil, malformed(kind, raw, err)
		}
		return types.Integer(n), nil
	case types.Integer64:
		n, err := parseInteger64(raw)
		if err != nil {
			return nil, malformed(kind, raw, err)
		}
		return types.Integer(n), nil
	default:
		return nil, &types.Error{Kind: types.ErrKindUnsupportedType, Msg: "unsupported value type " + kind.String()}
	}
}

func coerceBinary(raw string) (types.TypedValue, error) {
	if len(raw)%2 != 0 {
		return nil, malformed(types.Binary, raw, errOddHex)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, malformed(types.Binary, raw, errNotHex)
	}
	if b == nil {
		b = []byte{}
	}
	return types.Bytes(b), nil
}

// splitInteger separates the sign and picks the base. Only decimal and
// 0x-prefixed hexadecimal are accepted: no octal, binary or underscores.
func splitInteger(raw string) (neg bool, digits string, base int, err error) {
	s := raw
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base = 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}
	if s == "" {
		return false, "", 0, errEmptyInteger
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c >= '0' && c <= '9'
		if base == 16 {
			ok = ok || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		}
		if !ok {
			return false, "", 0, errBadDigit
		}
	}
	return neg, s, base, nil
}

// parseInteger parses raw within [lo, hi]; hi may exceed MaxInt64 only via
// parseInteger64.
func parseInteger(raw string, lo, hi int64) (int64, error) {
	neg, digits, base, err := splitInteger(raw)
	if err != nil {
		return 0, err
	}
	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, errOutOfRange
	}
	if neg {
		if mag > uint64(-lo) {
			return 0, errOutOfRange
		}
		return -int64(mag), nil
	}
	if mag > uint64(hi) {
		return 0, errOutOfRange
	}
	return int64(mag), nil
}

// parseInteger64 accepts [-2^63, 2^64-1]. Magnitudes above MaxInt64 keep
// their unsigned bit pattern.
func parseInteger64(raw string) (int64, error) {
	neg, digits, base, err := splitInteger(raw)
	if err != nil {
		return 0, err
	}
	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, errOutOfRange
	}
	if neg {
		if mag > 1<<63 {
			return 0, errOutOfRange
		}
		return int64(-mag), nil
	}
	return int64(mag), nil
}

// Render is the inverse of Coerce: Coerce(kind, Render(kind, v)) yields a
// value equal to v. Integers render in decimal, bytes as upper-case hex.
func Render(v types.TypedValue) string {
	switch val := v.(type) {
	case types.Integer:
		return strconv.FormatInt(int64(val), 10)
	case types.String:
		return string(val)
	case types.Strings:
		return strings.Join(val, MultiTextSeparator)
	case types.Bytes:
		return val.String()
	}
	return ""
}
