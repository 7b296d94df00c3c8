package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regapply/internal/store/memstore"
	"github.com/joshuapare/regapply/pkg/apply"
	"github.com/joshuapare/regapply/pkg/script"
	"github.com/joshuapare/regapply/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "[HKCU\\A]\nX:REG_DWORD=2\n")

	doc, err := script.ParseFile(p, script.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.DirectiveCount())

	_, err = script.ParseFile(filepath.Join(dir, "missing.txt"), script.ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = script.ParseFile(dir, script.ParseOptions{})
	require.Error(t, err, "directories are not scripts")
}

func TestFormat_RoundTrips(t *testing.T) {
	doc, err := script.ParseString("[HKCU/A]\n X : REG_SZ = v \n", script.ParseOptions{})
	require.NoError(t, err)
	out, err := script.Format(doc)
	require.NoError(t, err)
	assert.Equal(t, "[HKCU\\A]\nX:REG_SZ=v\n", string(out))
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	doc, err := script.ParseString(`[HKCU\A]
Ok:REG_DWORD=1
Bad1:REG_DWORD=0xZZ
Bad2:REG_BINARY=ABC
[HKCU\B]
Bad3:REG_QWORD=
`, script.ParseOptions{})
	require.NoError(t, err)

	err = script.Check(doc, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrMalformedValue)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	errs := joined.Unwrap()
	require.Len(t, errs, 3)

	lines := make([]int, 0, len(errs))
	for _, e := range errs {
		var te *types.Error
		require.ErrorAs(t, e, &te)
		lines = append(lines, te.Line)
	}
	assert.Equal(t, []int{3, 4, 6}, lines)

	good, err := script.ParseString("[HKCU\\A]\nOk:REG_DWORD=1\n", script.ParseOptions{})
	require.NoError(t, err)
	assert.NoError(t, script.Check(good, nil))
}

func TestCheck_Limits(t *testing.T) {
	doc, err := script.ParseString("[HKCU\\A\\B\\C]\n", script.ParseOptions{})
	require.NoError(t, err)
	err = script.Check(doc, &types.Limits{MaxTreeDepth: 2})
	require.ErrorIs(t, err, types.ErrLimitExceeded)
}

func TestApplyString(t *testing.T) {
	st := memstore.New()
	n, err := script.ApplyString(context.Background(), "[HKCU\\A]\nX:REG_DWORD=2\n", st, nil)
	require.NoError(t, err)
	assert.Equal(t, apply.Applied{Groups: 1, Containers: 1, Values: 1}, n)

	_, err = script.ApplyString(context.Background(), "X:REG_DWORD=2\n", st, nil)
	require.ErrorIs(t, err, types.ErrMissingSection)
}

func TestApplyFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "1.txt", "[HKCU\\A]\nX:REG_DWORD=1\n")
	second := writeFile(t, dir, "2.reg", "Windows Registry Editor Version 5.00\r\n\r\n[HKEY_CURRENT_USER\\A]\r\n\"X\"=dword:00000002\r\n")
	broken := writeFile(t, dir, "3.txt", "[HKXX\\A]\n")

	st := memstore.New()
	var progress [][2]int
	opts := &script.ApplyOptions{
		OnProgress: func(cur, total int) { progress = append(progress, [2]int{cur, total}) },
	}

	n, err := script.ApplyFiles(context.Background(), []string{first, second}, st, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, n.Values)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	v, ok := st.Lookup(types.NewPath(types.HKCU, "A"), "X")
	require.True(t, ok)
	assert.Equal(t, types.Integer(2), v.Value)

	n, err = script.ApplyFiles(context.Background(), []string{first, broken, second}, st, nil)
	require.ErrorIs(t, err, types.ErrUnknownRoot)
	assert.Contains(t, err.Error(), "script 2/3")
	assert.Equal(t, 1, n.Values)
}
