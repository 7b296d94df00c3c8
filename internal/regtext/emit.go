package regtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/internal/format"
	"github.com/joshuapare/regapply/pkg/types"
)

// ExportOptions controls .reg output.
type ExportOptions struct {
	// OutputEncoding is UTF-8 (default) or UTF-16LE.
	OutputEncoding string
	// WithBOM prefixes UTF-16LE output with a byte order mark, as regedit does.
	WithBOM bool
}

// EmitNative renders doc in canonical native form: one header per group
// using the backslash separator where possible, `Name:KIND=payload` lines,
// LF line endings and a blank line between groups. Parsing the output yields
// a Document equal to doc.
//
// Documents parsed from .reg text may hold names or payloads the native
// grammar cannot express (an empty default-value name, a name containing
// ':', surrounding whitespace); those fail with a SyntaxError naming the
// directive.
func EmitNative(doc *types.Document) ([]byte, error) {
	var buf bytes.Buffer
	for i, g := range doc.Groups {
		if i > 0 {
			buf.WriteString(LF)
		}
		header, err := nativeHeader(g.Path)
		if err != nil {
			return nil, &types.Error{Kind: types.ErrKindSyntax, Msg: err.Error(), Line: g.Line, Path: g.Path.String()}
		}
		buf.WriteString(header)
		buf.WriteString(LF)
		for _, d := range g.Directives {
			if err := checkNativeDirective(d); err != nil {
				return nil, &types.Error{Kind: types.ErrKindSyntax, Msg: err.Error(), Line: d.Line, Path: g.Path.String(), Name: d.Name}
			}
			buf.WriteString(d.Name)
			buf.WriteString(KindSeparator)
			buf.WriteString(d.Kind.String())
			buf.WriteString(ValueAssignment)
			buf.WriteString(d.Raw)
			buf.WriteString(LF)
		}
	}
	return buf.Bytes(), nil
}

// nativeHeader picks the first separator that no segment contains.
func nativeHeader(p types.ContainerPath) (string, error) {
	if len(p.Segments) == 0 {
		return "", fmt.Errorf("section %s has no path below the root", p.Root)
	}
	for _, sep := range PathSeparators {
		s := string(sep)
		usable := true
		for _, seg := range p.Segments {
			if seg == "" || strings.Contains(seg, s) || strings.ContainsAny(seg, "\r\n") {
				usable = false
				break
			}
		}
		if usable {
			return KeyOpenBracket + p.Root.String() + s + strings.Join(p.Segments, s) + KeyCloseBracket, nil
		}
	}
	return "", fmt.Errorf("path %q cannot be written as a native header", p.String())
}

func checkNativeDirective(d types.Directive) error {
	switch {
	case d.Name == "":
		return fmt.Errorf("default (unnamed) values cannot be written in native form")
	case strings.Contains(d.Name, KindSeparator):
		return fmt.Errorf("value name %q contains %q", d.Name, KindSeparator)
	case d.Name != strings.TrimSpace(d.Name):
		return fmt.Errorf("value name %q has surrounding whitespace", d.Name)
	case strings.HasPrefix(d.Name, KeyOpenBracket),
		strings.HasPrefix(d.Name, NativeCommentPrefix),
		strings.HasPrefix(d.Name, CommentPrefix):
		return fmt.Errorf("value name %q would not read back as a directive", d.Name)
	case d.Raw != strings.TrimSpace(d.Raw):
		return fmt.Errorf("payload %q has surrounding whitespace", d.Raw)
	case strings.ContainsAny(d.Name+d.Raw, "\r\n"):
		return fmt.Errorf("line break in name or payload")
	}
	return nil
}

// DocumentFromDump converts store contents into a native Document, one group
// per container. Containers without values still get a group.
func DocumentFromDump(keys []types.KeyDump) *types.Document {
	doc := &types.Document{Dialect: types.DialectNative}
	for _, k := range keys {
		g := types.Group{Path: k.Path}
		for _, v := range k.Values {
			g.Directives = append(g.Directives, types.Directive{
				Name: v.Name,
				Kind: v.Kind,
				Raw:  coerce.Render(v.Value),
			})
		}
		doc.Groups = append(doc.Groups, g)
	}
	return doc
}

// ExportReg renders store contents as .reg text, one section per container
// in the order given.
func ExportReg(keys []types.KeyDump, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(RegFileHeader + CRLF + CRLF)
	for _, k := range keys {
		buf.WriteString(KeyOpenBracket)
		buf.WriteString(k.Path.Root.LongName())
		for _, seg := range k.Path.Segments {
			buf.WriteString(Backslash)
			buf.WriteString(seg)
		}
		buf.WriteString(KeyCloseBracket + CRLF)
		for _, v := range k.Values {
			if err := emitRegValue(&buf, v); err != nil {
				return nil, fmt.Errorf("regtext: export %s %q: %w", k.Path, v.Name, err)
			}
		}
		buf.WriteString(CRLF)
	}
	switch strings.ToUpper(opts.OutputEncoding) {
	case "", EncodingUTF8, "UTF8":
		return buf.Bytes(), nil
	case EncodingUTF16LE:
		return encodeUTF16LE(buf.String(), opts.WithBOM)
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedEncoding, opts.OutputEncoding)
	}
}

func emitRegValue(buf *bytes.Buffer, v types.NamedValue) error {
	if v.Name == "" {
		buf.WriteString(DefaultValuePrefix)
	} else {
		buf.WriteString(Quote)
		buf.WriteString(escapeRegString(v.Name))
		buf.WriteString(Quote + ValueAssignment)
	}

	switch v.Kind {
	case types.Text:
		s, ok := v.Value.(types.String)
		if !ok {
			return fmt.Errorf("%s holds %v", v.Kind, v.Value.Tag())
		}
		buf.WriteString(Quote)
		buf.WriteString(escapeRegString(string(s)))
		buf.WriteString(Quote)
	case types.Integer32:
		n, ok := v.Value.(types.Integer)
		if !ok {
			return fmt.Errorf("%s holds %v", v.Kind, v.Value.Tag())
		}
		buf.WriteString(DWORDPrefix)
		fmt.Fprintf(buf, DWORDHexFormat, uint32(n))
	case types.Binary:
		data, err := format.Encode(v.Kind, v.Value)
		if err != nil {
			return err
		}
		buf.WriteString(HexPrefix)
		buf.WriteString(formatHex(data))
	default:
		data, err := format.Encode(v.Kind, v.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, HexTypeFormat, uint32(v.Kind))
		buf.WriteString(formatHex(data))
	}
	buf.WriteString(CRLF)
	return nil
}
