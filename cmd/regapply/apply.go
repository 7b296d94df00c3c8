package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/internal/metrics"
	"github.com/joshuapare/regapply/internal/store"
	"github.com/joshuapare/regapply/pkg/apply"
	"github.com/joshuapare/regapply/pkg/script"
	"github.com/joshuapare/regapply/pkg/types"
)

func init() {
	rootCmd.AddCommand(newApplyCmd())
}

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <script>...",
		Short: "Apply scripts to the configured store",
		Long: `The apply command parses each script and writes its values to the store,
in file order. It stops at the first error; values already written stay written.

Example:
  regapply apply settings.txt
  regapply apply base.txt patch.reg --store sqlite --db state.db
  regapply apply settings.txt --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args)
		},
	}
}

type appliedJSON struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

type applyResultJSON struct {
	RunID      string        `json:"run_id"`
	Scripts    []string      `json:"scripts"`
	Containers int           `json:"containers"`
	Values     int           `json:"values"`
	Applied    []appliedJSON `json:"applied"`
	Error      string        `json:"error,omitempty"`
}

func runApply(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	rec := metrics.New()

	backend, err := store.Open(ctx, cfg.Store, limits())
	if err != nil {
		rec.Error(err)
		writeMetrics(rec)
		return err
	}
	defer backend.Close()
	printVerbose("Using %s store\n", backend.Name)

	l := limits()
	result := applyResultJSON{RunID: runID, Scripts: paths, Applied: []appliedJSON{}}
	opts := &script.ApplyOptions{
		Parse: parseOptions(),
		Apply: apply.Options{
			Limits: &l,
			Logger: logger,
			OnApplied: func(v types.AppliedValue) {
				rec.Applied(v)
				rendered := coerce.Render(v.Value)
				if jsonOut {
					result.Applied = append(result.Applied, appliedJSON{
						Path: v.Path.String(), Name: v.Name, Kind: v.Kind.String(), Value: rendered, Line: v.Line,
					})
					return
				}
				printInfo("Set %s = %s (%s) at [%s]\n", v.Name, rendered, v.Kind, v.Path)
			},
			OnContainer: rec.Container,
		},
		OnProgress: func(current, total int) {
			if total > 1 {
				printVerbose("Applying %s (%d/%d)\n", paths[current-1], current, total)
			}
		},
	}

	start := time.Now()
	n, err := script.ApplyFiles(ctx, paths, backend, opts)
	rec.Duration(time.Since(start))
	rec.Error(err)
	writeMetrics(rec)

	if err != nil {
		logger.Debug("apply failed", "containers", n.Containers, "values", n.Values, "error", err)
	} else {
		logger.Info("apply finished", "scripts", len(paths), "containers", n.Containers, "values", n.Values)
	}

	if jsonOut {
		result.Containers, result.Values = n.Containers, n.Values
		if err != nil {
			result.Error = err.Error()
		}
		if perr := printJSON(result); perr != nil {
			return perr
		}
		return err
	}
	if err != nil {
		return err
	}
	printVerbose("%s %d values in %d containers\n", styled(successStyle, "✓ Applied"), n.Values, n.Containers)
	return nil
}

func writeMetrics(rec *metrics.Recorder) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("metrics not written", "error", err)
		return
	}
	printVerbose("Metrics written to %s\n", styled(pathStyle, cfg.Metrics.Textfile))
}
