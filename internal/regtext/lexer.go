package regtext

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regapply/pkg/types"
)

var (
	errUnsupportedEncoding = errors.New("regtext: unsupported encoding")
)

// decodeInput converts input data to UTF-8. A byte order mark wins over the
// requested encoding.
func decodeInput(data []byte, enc string) ([]byte, error) {
	// Check for UTF-16LE BOM
	if bytes.HasPrefix(data, UTF16LEBOM) {
		return decodeUTF16LE(data[len(UTF16LEBOM):])
	}
	// Check for UTF-8 BOM - just skip it, return rest as-is
	if bytes.HasPrefix(data, UTF8BOM) {
		return data[len(UTF8BOM):], nil
	}
	switch strings.ToUpper(enc) {
	case "", EncodingUTF8, "UTF8":
		return data, nil
	case EncodingUTF16LE:
		return decodeUTF16LE(data)
	case EncodingWindows1252, "CP1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("regtext: decoding Windows-1252: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedEncoding, enc)
	}
}

func decodeUTF16LE(data []byte) ([]byte, error) {
	// Drop a dangling byte rather than fail the whole script
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("regtext: decoding UTF-16LE: %w", err)
	}
	return out, nil
}

// encodeUTF16LE encodes s as UTF-16LE, optionally preceded by a BOM.
func encodeUTF16LE(s string, withBOM bool) ([]byte, error) {
	policy := unicode.IgnoreBOM
	if withBOM {
		policy = unicode.UseBOM
	}
	return unicode.UTF16(unicode.LittleEndian, policy).NewEncoder().Bytes([]byte(s))
}

// scanLines splits on LF, CRLF or a lone CR. Line terminators are not
// included in tokens.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// CR: need one more byte to tell CRLF from a lone CR
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// newLineScanner returns a scanner over text with the sizes used by both
// dialects. The buffer may grow to hold all of text, so a single line never
// exceeds it.
func newLineScanner(text []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), max(ScannerMaxLineSize, len(text)+1))
	scanner.Split(scanLines)
	return scanner
}

// isSkippable reports whether a trimmed line is blank or a comment.
func isSkippable(trim string) bool {
	return trim == "" || strings.HasPrefix(trim, CommentPrefix) || strings.HasPrefix(trim, NativeCommentPrefix)
}

// scanError reports a scanner failure at the line after the last one read.
func scanError(err error, lineNo int) error {
	return &types.Error{Kind: types.ErrKindSyntax, Msg: "regtext: reading script", Line: lineNo + 1, Err: err}
}
