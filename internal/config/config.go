// Package config loads regapply settings from defaults, a TOML file,
// REGAPPLY_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshuapare/regapply/pkg/types"
)

const (
	// AppName names the config and data directories.
	AppName = "regapply"
	// ConfigFileName is the config file name inside ConfigDir.
	ConfigFileName = "config.toml"
	// EnvPrefix prefixes environment overrides, e.g. REGAPPLY_STORE_BACKEND.
	EnvPrefix = "REGAPPLY"
)

// Store backends.
const (
	BackendRegistry = "registry"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config is the effective configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store" toml:"store"`
	Parse   ParseConfig   `mapstructure:"parse" toml:"parse"`
	Limits  string        `mapstructure:"limits" toml:"limits" comment:"limits preset: default, relaxed or strict"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics"`
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	Backend  string `mapstructure:"backend" toml:"backend" comment:"registry, sqlite or memory"`
	Path     string `mapstructure:"path" toml:"path" comment:"database file for the sqlite backend"`
	ReadOnly bool   `mapstructure:"read_only" toml:"read_only"`
	FoldCase bool   `mapstructure:"fold_case" toml:"fold_case" comment:"match names case-insensitively"`
}

// ParseConfig controls script decoding.
type ParseConfig struct {
	Dialect  string `mapstructure:"dialect" toml:"dialect" comment:"auto, native or reg"`
	Encoding string `mapstructure:"encoding" toml:"encoding" comment:"input encoding when no BOM is present"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level" comment:"debug, info, warn or error"`
	Format string `mapstructure:"format" toml:"format" comment:"text or json"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" toml:"textfile" comment:"write run metrics here (node_exporter textfile format)"`
}

// FlagKeys maps command-line flag names onto configuration keys.
var FlagKeys = map[string]string{
	"store":        "store.backend",
	"db":           "store.path",
	"read-only":    "store.read_only",
	"dialect":      "parse.dialect",
	"encoding":     "parse.encoding",
	"limits":       "limits",
	"log-format":   "log.format",
	"metrics-file": "metrics.textfile",
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	ConfigFile string         // explicit file; must exist
	ConfigDir  string         // overrides ConfigDir()
	Flags      *pflag.FlagSet // bound according to FlagKeys
}

// Default returns the built-in configuration.
func Default() Config {
	backend := BackendSQLite
	if runtime.GOOS == "windows" {
		backend = BackendRegistry
	}
	dbPath := AppName + ".db"
	if dir, err := DataDir(); err == nil {
		dbPath = filepath.Join(dir, "registry.db")
	}
	return Config{
		Store: StoreConfig{
			Backend:  backend,
			Path:     dbPath,
			FoldCase: true,
		},
		Parse: ParseConfig{
			Dialect:  string(types.DialectAuto),
			Encoding: "UTF-8",
		},
		Limits: "default",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/regapply (or the platform equivalent).
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// DataDir returns $XDG_DATA_HOME/regapply, falling back to ~/.local/share.
func DataDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, AppName), nil
		}
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// Load resolves the configuration. It returns the config file used, or ""
// when only defaults, environment and flags applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	switch {
	case opts.ConfigFile != "":
		if !fileExists(opts.ConfigFile) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		resolved = opts.ConfigFile
	default:
		dir := opts.ConfigDir
		if dir == "" {
			d, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			dir = d
		}
		if p := filepath.Join(dir, ConfigFileName); fileExists(p) {
			resolved = p
		}
	}
	if resolved != "" {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", resolved, err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, "", err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.read_only", d.Store.ReadOnly)
	v.SetDefault("store.fold_case", d.Store.FoldCase)
	v.SetDefault("parse.dialect", d.Parse.Dialect)
	v.SetDefault("parse.encoding", d.Parse.Encoding)
	v.SetDefault("limits", d.Limits)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

var (
	backends   = []string{BackendRegistry, BackendSQLite, BackendMemory}
	dialects   = []string{string(types.DialectAuto), string(types.DialectNative), string(types.DialectReg)}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(key, got string, allowed []string) {
		if !slices.Contains(allowed, strings.ToLower(got)) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %s", key, got, strings.Join(allowed, ", ")))
		}
	}
	oneOf("store.backend", c.Store.Backend, backends)
	oneOf("parse.dialect", c.Parse.Dialect, dialects)
	oneOf("log.level", c.Log.Level, logLevels)
	oneOf("log.format", c.Log.Format, logFormats)
	if _, err := types.LimitsPreset(c.Limits); err != nil {
		errs = append(errs, fmt.Errorf("limits: %w", err))
	}
	if strings.EqualFold(c.Store.Backend, BackendSQLite) && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path: required for the sqlite backend"))
	}
	return errors.Join(errs...)
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration to path. It refuses to
// replace an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if fileExists(path) && !force {
		return fmt.Errorf("config file already exists: %s", path)
	}
	cfg := Default()
	data, err := cfg.TOML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
