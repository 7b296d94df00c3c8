package regtext

import (
	"fmt"
	"strings"

	"github.com/joshuapare/regapply/pkg/types"
)

// ParseOptions controls how script text is decoded and which grammar is used.
type ParseOptions struct {
	// Dialect selects the grammar. Auto (or empty) picks the .reg dialect when
	// the first significant line is a regedit header, native otherwise.
	Dialect types.Dialect

	// InputEncoding forces a text encoding when no byte order mark is
	// present: UTF-8 (default), UTF-16LE or Windows-1252.
	InputEncoding string
}

// Parse converts script text into a Document. Errors are *types.Error with
// the 1-based line of the offending text.
func Parse(data []byte, opts ParseOptions) (*types.Document, error) {
	text, err := decodeInput(data, opts.InputEncoding)
	if err != nil {
		return nil, err
	}
	dialect := opts.Dialect
	switch dialect {
	case "", types.DialectAuto:
		dialect = DetectDialect(text)
	case types.DialectNative, types.DialectReg:
	default:
		return nil, fmt.Errorf("regtext: unknown dialect %q", opts.Dialect)
	}
	if dialect == types.DialectReg {
		return parseReg(text)
	}
	return parseNative(text)
}

// DetectDialect inspects the first significant line of UTF-8 text.
func DetectDialect(text []byte) types.Dialect {
	scanner := newLineScanner(text)
	for scanner.Scan() {
		trim := strings.TrimSpace(scanner.Text())
		if isSkippable(trim) {
			continue
		}
		if trim == RegFileHeader || trim == RegFileHeaderV4 {
			return types.DialectReg
		}
		break
	}
	return types.DialectNative
}

func parseNative(text []byte) (*types.Document, error) {
	doc := &types.Document{Dialect: types.DialectNative}
	scanner := newLineScanner(text)
	var current *types.Group
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		trim := strings.TrimSpace(scanner.Text())
		if trim == "" || strings.HasPrefix(trim, NativeCommentPrefix) || strings.HasPrefix(trim, CommentPrefix) {
			continue
		}
		if strings.HasPrefix(trim, KeyOpenBracket) {
			path, err := parseNativeHeader(trim, lineNo)
			if err != nil {
				return nil, err
			}
			doc.Groups = append(doc.Groups, types.Group{Path: path, Line: lineNo})
			current = &doc.Groups[len(doc.Groups)-1]
			continue
		}
		if current == nil {
			return nil, types.NewError(types.ErrKindMissingSection, lineNo,
				fmt.Sprintf("%q appears before any section header", trim))
		}
		d, err := parseDirective(trim, lineNo)
		if err != nil {
			return nil, err
		}
		current.Directives = append(current.Directives, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, scanError(err, lineNo)
	}
	return doc, nil
}

// parseNativeHeader parses `[ROOT<sep>seg<sep>seg]`.
func parseNativeHeader(trim string, lineNo int) (types.ContainerPath, error) {
	if !strings.HasSuffix(trim, KeyCloseBracket) || len(trim) < 2 {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed section %q: missing %q", trim, KeyCloseBracket))
	}
	inner := trim[1 : len(trim)-1]
	i := strings.IndexAny(inner, PathSeparators)
	if i < 0 {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed section %q: no path separator", trim))
	}
	code, rest, sep := inner[:i], inner[i+1:], inner[i:i+1]
	if code == "" || rest == "" {
		return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed section %q: empty root or path", trim))
	}
	root, ok := types.ParseRootCode(code)
	if !ok {
		return types.ContainerPath{}, types.NewError(types.ErrKindUnknownRoot, lineNo,
			fmt.Sprintf("unknown root key %q", code))
	}
	segments := strings.Split(rest, sep)
	for _, seg := range segments {
		if seg == "" {
			return types.ContainerPath{}, types.NewError(types.ErrKindSyntax, lineNo,
				fmt.Sprintf("malformed section %q: empty path segment", trim))
		}
	}
	return types.NewPath(root, segments...), nil
}

// parseDirective parses `name:KIND=payload`.
func parseDirective(trim string, lineNo int) (types.Directive, error) {
	colon := strings.Index(trim, KindSeparator)
	if colon < 0 {
		return types.Directive{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("expected name:KIND=value, got %q", trim))
	}
	name := strings.TrimSpace(trim[:colon])
	rest := trim[colon+1:]
	eq := strings.Index(rest, ValueAssignment)
	if name == "" || eq < 0 {
		return types.Directive{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("expected name:KIND=value, got %q", trim))
	}
	spelling := strings.TrimSpace(rest[:eq])
	if !isKindSpelling(spelling) {
		return types.Directive{}, types.NewError(types.ErrKindSyntax, lineNo,
			fmt.Sprintf("malformed value type %q", spelling))
	}
	kind, ok := types.ParseValueKind(spelling)
	if !ok {
		return types.Directive{}, &types.Error{
			Kind: types.ErrKindUnsupportedType,
			Msg:  fmt.Sprintf("unsupported value type %q", spelling),
			Line: lineNo,
			Name: name,
		}
	}
	return types.Directive{
		Name: name,
		Kind: kind,
		Raw:  strings.TrimSpace(rest[eq+1:]),
		Line: lineNo,
	}, nil
}

// isKindSpelling reports whether s is a non-empty run of A-Z and underscore.
func isKindSpelling(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if (s[i] < 'A' || s[i] > 'Z') && s[i] != '_' {
			return false
		}
	}
	return true
}
