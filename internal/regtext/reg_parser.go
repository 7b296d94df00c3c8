package regtext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/internal/format"
	"github.com/joshuapare/regapply/pkg/types"
)

// logicalLine is one .reg statement after continuation lines are joined.
type logicalLine struct {
	text string
	line int // line where the statement starts
}

// parseReg parses the regedit dialect. Values are decoded from their .reg
// spelling and re-rendered as native payloads, so both dialects reach the
// store through the same coercion path.
func parseReg(text []byte) (*types.Document, error) {
	lines, err := joinContinuations(text)
	if err != nil {
		return nil, err
	}
	doc := &types.Document{Dialect: types.DialectReg}
	seenHeader := false
	var current *types.Group

	for _, ll := range lines {
		trim := ll.text
		if !seenHeader {
			if trim != RegFileHeader && trim != RegFileHeaderV4 {
				return nil, types.NewError(types.ErrKindSyntax, ll.line, "regtext: missing header")
			}
			seenHeader = true
			continue
		}
		if strings.HasPrefix(trim, KeyOpenBracket) {
			path, err := parseRegSection(trim, ll.line)
			if err != nil {
				return nil, err
			}
			doc.Groups = append(doc.Groups, types.Group{Path: path, Line: ll.line})
			current = &doc.Groups[len(doc.Groups)-1]
			continue
		}
		if current == nil {
			return nil, types.NewError(types.ErrKindMissingSection, ll.line,
				fmt.Sprintf("value without section: %q", trim))
		}
		d, err := parseRegValueLine(trim, ll.line)
		if err != nil {
			return nil, err
		}
		current.Directives = append(current.Directives, d)
	}
	if !seenHeader {
		return nil, types.NewError(types.ErrKindSyntax, 1, "regtext: missing header")
	}
	return doc, nil
}

// joinContinuations drops blank and comment lines and joins hex payloads
// that continue with a trailing backslash.
func joinContinuations(text []byte) ([]logicalLine, error) {
	scanner := newLineScanner(text)
	var out []logicalLine
	var pending *logicalLine
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		trim := strings.TrimSpace(scanner.Text())
		if pending != nil {
			body, more := strings.CutSuffix(trim, Backslash)
			pending.text += body
			if !more {
				out = append(out, *pending)
				pending = nil
			}
			continue
		}
		if isSkippable(trim) {
			continue
		}
		if isHexContinuation(trim) {
			pending = &logicalLine{text: strings.TrimSuffix(trim, Backslash), line: lineNo}
			continue
		}
		out = append(out, logicalLine{text: trim, line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, scanError(err, lineNo)
	}
	if pending != nil {
		return nil, types.NewError(types.ErrKindSyntax, pending.line, "regtext: continuation at end of file")
	}
	return out, nil
}

// isHexContinuation reports whether a value line carries hex data that
// continues on the next line.
func isHexContinuation(trim string) bool {
	if !strings.HasSuffix(trim, Backslash) || strings.HasPrefix(trim, KeyOpenBracket) {
		return false
	}
	_, payload, ok := splitRegValue(trim)
	return ok && strings.HasPrefix(payload, "hex")
}

func parseRegSection(trim string, lineNo int) (types.ContainerPath, error) {
	if !strings.HasSuffix(trim, KeyCloseBracket) {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed section %q", trim))
	}
	section := strings.TrimSuffix(strings.TrimPrefix(trim, KeyOpenBracket), KeyCloseBracket)
	if strings.HasPrefix(section, DeleteKeyPrefix) {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("key deletion %q is not supported", trim))
	}
	parts := strings.Split(section, Backslash)
	root, ok := types.ParseRootName(parts[0])
	if !ok {
		return types.ContainerPath{}, types.NewError(types.ErrKindUnknownRoot, lineNo,
			fmt.Sprintf("unknown root key %q", parts[0]))
	}
	segments := parts[1:]
	if len(segments) == 0 {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("section %q names only a root key", trim))
	}
	for _, seg := range segments {
		if seg == "" {
			return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
				fmt.Sprintf("malformed section %q: empty path segment", trim))
		}
	}
	return types.NewPath(root, segments...), nil
}

// splitRegValue splits `"Name"=payload` or `@=payload`.
func splitRegValue(line string) (name, payload string, ok bool) {
	if strings.HasPrefix(line, DefaultValuePrefix) {
		return "", strings.TrimSpace(line[len(DefaultValuePrefix):]), true
	}
	if !strings.HasPrefix(line, Quote) {
		return "", "", false
	}
	end := findClosingQuote(line)
	if end < 0 {
		return "", "", false
	}
	rest := strings.TrimLeft(line[end+1:], " \t")
	if !strings.HasPrefix(rest, ValueAssignment) {
		return "", "", false
	}
	return unescapeRegString(line[1:end]), strings.TrimSpace(rest[1:]), true
}

func parseRegValueLine(trim string, lineNo int) (types.Directive, error) {
	name, payload, ok := splitRegValue(trim)
	if !ok {
		return types.Directive{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed value line %q", trim))
	}
	kind, value, err := decodeRegPayload(payload)
	if err != nil {
		var e *types.Error
		if errors.As(err, &e) {
			e.Line, e.Name = lineNo, name
			return types.Directive{}, e
		}
		return types.Directive{}, &types.Error{
			Kind: types.ErrKindMalformedValue, Msg: "invalid .reg value data",
			Line: lineNo, Name: name, Err: err,
		}
	}
	if kind == types.MultiText {
		for _, s := range value.(types.Strings) {
			if strings.Contains(s, coerce.MultiTextSeparator) {
				return types.Directive{}, &types.Error{
					Kind: types.ErrKindMalformedValue,
					Msg:  fmt.Sprintf("REG_MULTI_SZ element %q contains the %s marker", s, coerce.MultiTextSeparator),
					Line: lineNo, Name: name,
				}
			}
		}
	}
	return types.Directive{Name: name, Kind: kind, Raw: coerce.Render(value), Line: lineNo}, nil
}

// decodeRegPayload decodes the right-hand side of a .reg value line.
func decodeRegPayload(payload string) (types.ValueKind, types.TypedValue, error) {
	switch {
	case payload == DeleteValueToken:
		return 0, nil, &types.Error{Kind: types.ErrKindSyntax, Msg: "value deletion is not supported"}

	case strings.HasPrefix(payload, Quote):
		if len(payload) < 2 || !strings.HasSuffix(payload, Quote) {
			return 0, nil, &types.Error{Kind: types.ErrKindSyntax, Msg: fmt.Sprintf("unterminated string %q", payload)}
		}
		return types.Text, types.String(unescapeRegString(payload[1 : len(payload)-1])), nil

	case strings.HasPrefix(payload, DWORDPrefix):
		hexPart := payload[len(DWORDPrefix):]
		if len(hexPart) != DWORDHexLength {
			return 0, nil, fmt.Errorf("invalid dword %q", payload)
		}
		n, err := strconv.ParseUint(hexPart, 16, 32)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid dword %q", payload)
		}
		return types.Integer32, types.Integer(n), nil

	case strings.HasPrefix(payload, HexPrefix):
		data, err := parseHexBytes(payload)
		if err != nil {
			return 0, nil, err
		}
		return types.Binary, types.Bytes(data), nil

	case strings.HasPrefix(payload, HexTypedPrefix):
		typeNum, found := parseHexValueType(payload)
		if !found {
			return 0, nil, &types.Error{Kind: types.ErrKindSyntax, Msg: fmt.Sprintf("malformed hex type in %q", payload)}
		}
		n, err := strconv.ParseUint(typeNum, 16, 32)
		kind := types.ValueKind(n)
		if err != nil || !kind.Valid() {
			return 0, nil, &types.Error{Kind: types.ErrKindUnsupportedType, Msg: fmt.Sprintf("unsupported value type hex(%s)", typeNum)}
		}
		data, err := parseHexBytes(payload)
		if err != nil {
			return 0, nil, err
		}
		v, err := format.Decode(kind, data)
		if err != nil {
			return 0, nil, err
		}
		return kind, v, nil
	}
	return 0, nil, &types.Error{Kind: types.ErrKindSyntax, Msg: fmt.Sprintf("unsupported value %q", payload)}
}
