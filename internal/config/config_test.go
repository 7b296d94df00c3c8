package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, path, err := Load(LoadOptions{ConfigDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, path)

	want := BackendSQLite
	if runtime.GOOS == "windows" {
		want = BackendRegistry
	}
	assert.Equal(t, want, cfg.Store.Backend)
	assert.True(t, cfg.Store.FoldCase)
	assert.Equal(t, "auto", cfg.Parse.Dialect)
	assert.Equal(t, "default", cfg.Limits)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FileEnvFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(file, []byte(`
limits = "strict"

[store]
backend = "memory"
path = "/tmp/from-file.db"

[log]
level = "info"
`), 0o644))

	t.Setenv("REGAPPLY_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("dialect", "auto", "")
	require.NoError(t, fs.Parse([]string{"--db", "/tmp/from-flag.db"}))

	cfg, path, err := Load(LoadOptions{ConfigDir: dir, Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)    // file
	assert.Equal(t, "strict", cfg.Limits)                // file
	assert.Equal(t, "debug", cfg.Log.Level)              // env over file
	assert.Equal(t, "/tmp/from-flag.db", cfg.Store.Path) // flag over file
	assert.Equal(t, "auto", cfg.Parse.Dialect)           // unset flag keeps default
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("REGAPPLY_STORE_BACKEND", "floppy")
	t.Setenv("REGAPPLY_LIMITS", "huge")
	_, _, err := Load(LoadOptions{ConfigDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "limits")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ConfigFileName)
	require.NoError(t, WriteDefault(path, false))

	err := WriteDefault(path, false)
	require.Error(t, err)
	require.NoError(t, WriteDefault(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, toml.Unmarshal(data, &got))
	assert.Equal(t, Default(), got)

	cfg, resolved, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, Default(), *cfg)
}
