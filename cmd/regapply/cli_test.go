package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/joshuapare/regapply/internal/config"
	"github.com/joshuapare/regapply/pkg/types"
)

const demoScript = `# demo settings
[HKCU\Software\Vendor]
Name:REG_SZ=demo
Retries:REG_DWORD=0x03

[HKLM/Software/Vendor]
Paths:REG_MULTI_SZ=a\0b
Blob:REG_BINARY=DEADBEEF
`

func TestApply_PrintsEachValue(t *testing.T) {
	path := writeScript(t, "demo.txt", demoScript)
	out, _, err := runCLI(t, "apply", path, "--store", "memory")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		`Set Name = demo (REG_SZ) at [HKCU\Software\Vendor]`,
		`Set Retries = 3 (REG_DWORD) at [HKCU\Software\Vendor]`,
		`Set Paths = a\0b (REG_MULTI_SZ) at [HKLM\Software\Vendor]`,
		`Set Blob = DEADBEEF (REG_BINARY) at [HKLM\Software\Vendor]`,
	}, lines)
}

func TestRoot_AppliesPositionalScript(t *testing.T) {
	path := writeScript(t, "demo.txt", demoScript)
	out, _, err := runCLI(t, path, "--store", "memory", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApply_JSON(t *testing.T) {
	path := writeScript(t, "demo.txt", demoScript)
	out, _, err := runCLI(t, "apply", path, "--store", "memory", "--json")
	require.NoError(t, err)

	var res applyResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Values)
	assert.Equal(t, 2, res.Containers)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Applied, 4)
	assert.Equal(t, "Retries", res.Applied[1].Name)
	assert.Equal(t, 4, res.Applied[1].Line)
}

func TestApply_ThenExport_SQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "state.db")
	path := writeScript(t, "demo.txt", demoScript)
	_, _, err := runCLI(t, "apply", path, "--store", "sqlite", "--db", db, "-q")
	require.NoError(t, err)

	out, _, err := runCLI(t, "export", "--store", "sqlite", "--db", db, "--root", "hkcu")
	require.NoError(t, err)
	assert.Equal(t, "[HKCU\\Software]\n\n[HKCU\\Software\\Vendor]\nName:REG_SZ=demo\nRetries:REG_DWORD=3\n", out)

	out, _, err = runCLI(t, "export", "--store", "sqlite", "--db", db, "--read-only", "--format", "reg")
	require.NoError(t, err)
	assertContains(t, out, []string{
		"Windows Registry Editor Version 5.00",
		"[HKEY_LOCAL_MACHINE\\Software\\Vendor]",
		`"Retries"=dword:00000003`,
		`"Blob"=hex:de,ad,be,ef`,
	})

	out, _, err = runCLI(t, "export", "--store", "sqlite", "--db", db, "--format", "yaml")
	require.NoError(t, err)
	var keys []keyView
	require.NoError(t, yaml.Unmarshal([]byte(out), &keys))
	assert.Len(t, keys, 4)
}

func TestApply_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		script string
		args   []string
		code   int
		kind   error
	}{
		{"unknown root", "[HKXX\\Foo]\nA:REG_SZ=x\n", nil, exitScript, types.ErrUnknownRoot},
		{"odd binary", "[HKCU\\Foo]\nB:REG_BINARY=ABC\n", nil, exitScript, types.ErrMalformedValue},
		{"read-only store", "[HKCU\\Foo]\nA:REG_SZ=x\n", []string{"--read-only"}, exitStore, types.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, "bad.txt", tt.script)
			args := append([]string{"apply", path, "--store", "memory"}, tt.args...)
			out, _, err := runCLI(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, exitCode(err))
			assertNotContains(t, out, []string{"Set "})
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFailure, exitCode(errors.New("plain")))
	assert.Equal(t, exitScript, exitCode(fmt.Errorf("wrapped: %w", types.NewError(types.ErrKindSyntax, 3, "bad"))))
	assert.Equal(t, exitStore, exitCode(&types.Error{Kind: types.ErrKindStoreUnavailable}))
	assert.Equal(t, exitStore, exitCode(&types.Error{Kind: types.ErrKindTypeMismatch}))
	assert.Equal(t, exitScript, exitCode(errors.Join(types.NewError(types.ErrKindMalformedValue, 1, "x"))))
}

func TestCheck(t *testing.T) {
	good := writeScript(t, "good.txt", demoScript)
	bad := writeScript(t, "bad.txt", "[HKCU\\A]\nX:REG_DWORD=zz\nY:REG_BINARY=0\n")

	out, _, err := runCLI(t, "check", good, "--no-color")
	require.NoError(t, err)
	assertContains(t, out, []string{"✓ " + good + ": 2 sections, 4 values"})

	out, _, err = runCLI(t, "check", good, bad, "--no-color")
	require.Error(t, err)
	assert.Equal(t, exitScript, exitCode(err))
	assertContains(t, out, []string{"✗ " + bad, "line 2", "line 3"})

	out, _, err = runCLI(t, "check", good, "--format", "yaml")
	require.NoError(t, err)
	var docs []documentView
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "native", docs[0].Dialect)
	assert.Equal(t, `HKLM\Software\Vendor`, docs[0].Groups[1].Path)

	out, _, err = runCLI(t, "check", bad, "--json")
	require.Error(t, err)
	var jdocs []documentView
	require.NoError(t, json.Unmarshal([]byte(out), &jdocs))
	assert.Len(t, jdocs[0].Errors, 2)
}

func TestFmt(t *testing.T) {
	path := writeScript(t, "demo.txt", demoScript)

	out, _, err := runCLI(t, "fmt", path)
	require.NoError(t, err)
	assertContains(t, out, []string{`[HKLM\Software\Vendor]`, "Retries:REG_DWORD=0x03"})
	assertNotContains(t, out, []string{"# demo", "HKLM/"})

	out, _, err = runCLI(t, "fmt", path, "--diff")
	require.NoError(t, err)
	assertContains(t, out, []string{"--- " + path, "+++ " + path + " (formatted)", "-[HKLM/Software/Vendor]", "+[HKLM\\Software\\Vendor]"})

	_, _, err = runCLI(t, "fmt", path, "--write")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "HKLM/")

	out, _, err = runCLI(t, "fmt", path, "--diff")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConfigInitAndShow(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, "config", "init", file, "--no-color")
	require.NoError(t, err)
	assertContains(t, out, []string{"✓ Wrote " + file})

	_, _, err = runCLI(t, "config", "init", file)
	require.Error(t, err)

	out, _, err = runCLI(t, "config", "show", "--config", file, "--store", "memory")
	require.NoError(t, err)
	assertContains(t, out, []string{"# loaded from " + file, "[store]", "[parse]"})

	var shown config.Config
	require.NoError(t, toml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "memory", shown.Store.Backend)
	assert.Equal(t, "default", shown.Limits)
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assertContains(t, out, []string{"regapply dev", "commit: none"})
}
