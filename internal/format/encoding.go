package format

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/joshuapare/regapply/pkg/types"
)

// Registry wire encoding of typed values.
//
// Strings are UTF-16LE with a trailing null code unit, REG_MULTI_SZ is a
// sequence of such strings closed by an extra null, and integers are
// little-endian. This is the byte form Windows stores and the form the .reg
// dialect spells out as hex.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// EncodeUTF16Z encodes s as UTF-16LE followed by a null code unit.
func EncodeUTF16Z(s string) []byte {
	words := utf16.Encode([]rune(s))
	// Null terminator is already zero from make()
	buf := make([]byte, (len(words)+1)*UTF16CodeUnitSize)
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[i*UTF16CodeUnitSize:], w)
	}
	return buf
}

// EncodeMultiString encodes values as REG_MULTI_SZ data.
func EncodeMultiString(values []string) []byte {
	var out []byte
	for _, v := range values {
		out = append(out, EncodeUTF16Z(v)...)
	}
	return append(out, DoubleNullTerminator...)
}

// DecodeUTF16 decodes UTF-16LE data, dropping one trailing null code unit.
func DecodeUTF16(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if len(data)%UTF16CodeUnitSize != 0 {
		return "", ErrOddLength
	}
	if data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}
	return decodeUTF16LE(data), nil
}

// DecodeMultiString decodes REG_MULTI_SZ data. Every element keeps its
// position, including empty ones; decoding stops at the first empty element
// that is followed only by the closing terminator.
func DecodeMultiString(data []byte) ([]string, error) {
	if len(data)%UTF16CodeUnitSize != 0 {
		return nil, ErrOddLength
	}
	if len(data) < 2 || data[len(data)-1] != 0 || data[len(data)-2] != 0 {
		return nil, ErrMissingTerminator
	}
	// Drop the list terminator, then split on the per-string terminators.
	body := data[:len(data)-2]
	if len(body) == 0 {
		return []string{}, nil
	}
	if body[len(body)-1] != 0 || body[len(body)-2] != 0 {
		// Some writers omit the final string's own terminator.
		body = append(body[:len(body):len(body)], 0, 0)
	}
	result := []string{}
	start := 0
	for i := 0; i < len(body); i += 2 {
		if body[i] == 0 && body[i+1] == 0 {
			result = append(result, decodeUTF16LE(body[start:i]))
			start = i + 2
		}
	}
	return result, nil
}

// Encode converts a typed value to the bytes a registry stores for kind.
// REG_DWORD takes the low 32 bits of the integer.
func Encode(kind types.ValueKind, v types.TypedValue) ([]byte, error) {
	if v == nil || v.Tag() != kind.Tag() {
		return nil, fmt.Errorf("%w: %s cannot hold %v", ErrUnsupported, kind, tagOf(v))
	}
	switch kind {
	case types.Text, types.ExpandableText:
		return EncodeUTF16Z(string(v.(types.String))), nil
	case types.MultiText:
		return EncodeMultiString(v.(types.Strings)), nil
	case types.Binary:
		b := v.(types.Bytes)
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case types.Integer32:
		buf := make([]byte, DWORDSize)
		PutU32(buf, 0, uint32(v.(types.Integer)))
		return buf, nil
	case types.Integer64:
		buf := make([]byte, QWORDSize)
		PutU64(buf, 0, uint64(v.(types.Integer)))
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

// Decode is the inverse of Encode. REG_DWORD data decodes as an unsigned
// 32-bit quantity.
func Decode(kind types.ValueKind, data []byte) (types.TypedValue, error) {
	switch kind {
	case types.Text, types.ExpandableText:
		s, err := DecodeUTF16(data)
		if err != nil {
			return nil, err
		}
		return types.String(s), nil
	case types.MultiText:
		ss, err := DecodeMultiString(data)
		if err != nil {
			return nil, err
		}
		return types.Strings(ss), nil
	case types.Binary:
		out := make([]byte, len(data))
		copy(out, data)
		return types.Bytes(out), nil
	case types.Integer32:
		if len(data) != DWORDSize {
			return nil, fmt.Errorf("%w: REG_DWORD needs %d bytes, got %d", ErrTruncated, DWORDSize, len(data))
		}
		return types.Integer(ReadU32(data, 0)), nil
	case types.Integer64:
		if len(data) != QWORDSize {
			return nil, fmt.Errorf("%w: REG_QWORD needs %d bytes, got %d", ErrTruncated, QWORDSize, len(data))
		}
		return types.Integer(int64(ReadU64(data, 0))), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

// EncodedSize returns len(Encode(kind, v)) without allocating the data.
func EncodedSize(kind types.ValueKind, v types.TypedValue) int {
	switch val := v.(type) {
	case types.String:
		return utf16Len(string(val)) + UTF16CodeUnitSize
	case types.Strings:
		n := UTF16CodeUnitSize
		for _, s := range val {
			n += utf16Len(s) + UTF16CodeUnitSize
		}
		return n
	case types.Bytes:
		return len(val)
	case types.Integer:
		if kind == types.Integer64 {
			return QWORDSize
		}
		return DWORDSize
	}
	return 0
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n * UTF16CodeUnitSize
}

func tagOf(v types.TypedValue) types.ValueTag {
	if v == nil {
		return 0
	}
	return v.Tag()
}
