package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regapply/internal/config"
	"github.com/joshuapare/regapply/internal/logging"
	"github.com/joshuapare/regapply/pkg/script"
	"github.com/joshuapare/regapply/pkg/types"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool

	// Resolved per run in PersistentPreRunE
	cfg    *config.Config
	runID  string
	logger = slog.New(slog.DiscardHandler)
	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "regapply [script...]",
	Short: "Apply registry configuration scripts",
	Long: `regapply reads registry configuration scripts and writes every value they
declare into a registry store: the Windows registry, a SQLite file or an
in-memory tree.

Scripts list sections and typed values:

  [HKCU\Software\Vendor]
  Name:REG_SZ=demo
  Retries:REG_DWORD=0x03

Legacy regedit exports (.reg files) are accepted as well.

Example:
  regapply settings.txt
  regapply apply base.txt overrides.reg --store sqlite --db state.db
  regapply check settings.txt --format yaml`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runApply(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/regapply/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	pf.String("store", "", "Store backend: registry, sqlite or memory")
	pf.String("db", "", "Database file for the sqlite backend")
	pf.Bool("read-only", false, "Open the store read-only")
	pf.String("dialect", "", "Script dialect: auto, native or reg")
	pf.String("encoding", "", "Input encoding when no BOM is present")
	pf.String("limits", "", "Limits preset: default, relaxed or strict")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("metrics-file", "", "Write run metrics to this Prometheus textfile")
}

func setup(cmd *cobra.Command) error {
	stdout = cmd.OutOrStdout()

	c, path, err := config.Load(config.LoadOptions{ConfigFile: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	cfg = c

	l, id, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: verbose,
		Quiet:   quiet,
	})
	if err != nil {
		return err
	}
	logger, runID = l, id
	logger.Debug("configuration loaded", "file", path, "store", cfg.Store.Backend)
	return nil
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// parseOptions returns the script decoding settings from the configuration.
func parseOptions() script.ParseOptions {
	return script.ParseOptions{
		Dialect:       types.Dialect(cfg.Parse.Dialect),
		InputEncoding: cfg.Parse.Encoding,
	}
}

func limits() types.Limits {
	l, err := types.LimitsPreset(cfg.Limits)
	if err != nil {
		return types.DefaultLimits()
	}
	return l
}

// Exit codes.
const (
	exitFailure = 1
	exitScript  = 2
	exitStore   = 3
)

// exitCode maps an error onto the process exit status: script problems
// (syntax, coercion, limits) exit 2 and store failures exit 3.
func exitCode(err error) int {
	var te *types.Error
	if !errors.As(err, &te) {
		return exitFailure
	}
	switch {
	case te.Kind.IsParseTime():
		return exitScript
	case te.Kind == types.ErrKindAccessDenied,
		te.Kind == types.ErrKindStoreUnavailable,
		te.Kind == types.ErrKindTypeMismatch:
		return exitStore
	}
	return exitFailure
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
