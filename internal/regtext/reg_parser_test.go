package regtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regapply/pkg/types"
)

func TestParseReg_Values(t *testing.T) {
	input := `Windows Registry Editor Version 5.00

; exported
[HKEY_CURRENT_USER\Software\Vendor]
@="Default"
"Name"="My \"quoted\" C:\\path"
"Flags"=dword:0000002a
"Icon"=hex:41,42,43
"Path"=hex(2):25,00,41,00,25,00,00,00
"Tags"=hex(7):61,00,00,00,62,00,00,00,00,00
"Big"=hex(b):ff,ff,ff,ff,ff,ff,ff,ff
"Sz"=hex(1):68,00,69,00,00,00
"Empty"=hex:

[HKLM\SYSTEM\Setup]
"Wrapped"=hex:01,02,\
  03,04,\
  05
`
	doc, err := Parse([]byte(input), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.DialectReg, doc.Dialect)
	require.Len(t, doc.Groups, 2)

	g := doc.Groups[0]
	assert.Equal(t, types.NewPath(types.HKCU, "Software", "Vendor"), g.Path)
	assert.Equal(t, 4, g.Line)

	want := []types.Directive{
		{Name: "", Kind: types.Text, Raw: "Default", Line: 5},
		{Name: "Name", Kind: types.Text, Raw: `My "quoted" C:\path`, Line: 6},
		{Name: "Flags", Kind: types.Integer32, Raw: "42", Line: 7},
		{Name: "Icon", Kind: types.Binary, Raw: "414243", Line: 8},
		{Name: "Path", Kind: types.ExpandableText, Raw: "%A%", Line: 9},
		{Name: "Tags", Kind: types.MultiText, Raw: `a\0b`, Line: 10},
		{Name: "Big", Kind: types.Integer64, Raw: "-1", Line: 11},
		{Name: "Sz", Kind: types.Text, Raw: "hi", Line: 12},
		{Name: "Empty", Kind: types.Binary, Raw: "", Line: 13},
	}
	assert.Equal(t, want, g.Directives)

	w := doc.Groups[1]
	assert.Equal(t, types.NewPath(types.HKLM, "SYSTEM", "Setup"), w.Path)
	require.Len(t, w.Directives, 1)
	assert.Equal(t, "0102030405", w.Directives[0].Raw)
	assert.Equal(t, 16, w.Directives[0].Line)
}

func TestParseReg_BackslashEscaping(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		expectedName string
	}{
		{
			name:         "Value name ending with backslash",
			line:         `"C:\\"=dword:00000001`,
			expectedName: `C:\`,
		},
		{
			name:         "Value name with multiple trailing backslashes",
			line:         `"\\\\"=dword:00000001`,
			expectedName: `\\`,
		},
		{
			name:         "Value name with escaped quote",
			line:         `"Test\"Quote"=dword:00000001`,
			expectedName: `Test"Quote`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := RegFileHeader + "\n[HKCU\\A]\n" + tt.line + "\n"
			doc, err := Parse([]byte(input), ParseOptions{Dialect: types.DialectReg})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, doc.Groups[0].Directives[0].Name)
		})
	}
}

func TestParseReg_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind types.ErrKind
		line int
	}{
		{"key deletion", "[-HKEY_CURRENT_USER\\A]\n", types.ErrKindSyntax, 2},
		{"value deletion", "[HKCU\\A]\n\"X\"=-\n", types.ErrKindSyntax, 3},
		{"unknown root", "[HKEY_NOWHERE\\A]\n", types.ErrKindUnknownRoot, 2},
		{"root only", "[HKEY_USERS]\n", types.ErrKindSyntax, 2},
		{"value before section", "\"X\"=dword:00000001\n", types.ErrKindMissingSection, 2},
		{"unsupported hex type", "[HKCU\\A]\n\"X\"=hex(0):\n", types.ErrKindUnsupportedType, 3},
		{"big endian dword", "[HKCU\\A]\n\"X\"=hex(5):00,00,00,01\n", types.ErrKindUnsupportedType, 3},
		{"short dword", "[HKCU\\A]\n\"X\"=dword:1\n", types.ErrKindMalformedValue, 3},
		{"bad hex byte", "[HKCU\\A]\n\"X\"=hex:zz\n", types.ErrKindMalformedValue, 3},
		{"odd utf16", "[HKCU\\A]\n\"X\"=hex(2):41\n", types.ErrKindMalformedValue, 3},
		{"multi sz marker", "[HKCU\\A]\n\"X\"=hex(7):5c,00,30,00,00,00,00,00\n", types.ErrKindMalformedValue, 3},
		{"unterminated string", "[HKCU\\A]\n\"X\"=\"abc\n", types.ErrKindSyntax, 3},
		{"garbage", "[HKCU\\A]\nnonsense\n", types.ErrKindSyntax, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := RegFileHeader + "\n" + tt.body
			_, err := Parse([]byte(input), ParseOptions{Dialect: types.DialectReg})
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.kind, e.Kind, err.Error())
			assert.Equal(t, tt.line, e.Line)
		})
	}
}

func TestParseReg_MissingHeader(t *testing.T) {
	_, err := Parse([]byte("[HKCU\\A]\n"), ParseOptions{Dialect: types.DialectReg})
	require.ErrorIs(t, err, types.ErrSyntax)

	_, err = Parse(nil, ParseOptions{Dialect: types.DialectReg})
	require.ErrorIs(t, err, types.ErrSyntax)
}

func TestParseReg_UTF16WithBOM(t *testing.T) {
	data, err := encodeUTF16LE(RegFileHeader+"\r\n\r\n[HKEY_CURRENT_CONFIG\\Größe]\r\n\"K\"=\"wert\"\r\n", true)
	require.NoError(t, err)
	doc, err := Parse(data, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.NewPath(types.HKCC, "Größe"), doc.Groups[0].Path)
	assert.Equal(t, "wert", doc.Groups[0].Directives[0].Raw)
}
