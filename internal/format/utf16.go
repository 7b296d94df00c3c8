package format

import "strings"

// decodeUTF16LE decodes UTF-16LE bytes to a UTF-8 string without an
// intermediate []uint16. Unpaired surrogates decode to U+FFFD.
func decodeUTF16LE(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	// Fast path: check if it's all ASCII (most common case in registry)
	// In UTF-16LE, ASCII chars are: [byte, 0x00]
	allASCII := len(data)%2 == 0
	for i := 0; allASCII && i < len(data); i += 2 {
		if data[i+1] != 0 || data[i] >= UTF16ASCIIThreshold {
			allASCII = false
		}
	}

	var b strings.Builder
	if allASCII {
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8

		// High surrogate (U+D800 to U+DBFF) followed by a low one
		if r >= 0xD800 && r <= 0xDBFF && i+3 < len(data) {
			r2 := rune(data[i+2]) | rune(data[i+3])<<8
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				r = 0x10000 + ((r-0xD800)<<10 | (r2 - 0xDC00))
				i += 2
			}
		}

		b.WriteRune(r)
	}
	return b.String()
}
