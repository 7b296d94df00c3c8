package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/joshuapare/regapply/pkg/script"
)

var (
	fmtWrite bool
	fmtDiff  bool
)

func init() {
	cmd := newFmtCmd()
	cmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Rewrite the file in place")
	cmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "Show a unified diff instead of the formatted script")
	rootCmd.AddCommand(cmd)
}

func newFmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <script>",
		Short: "Print a script in canonical form",
		Long: `The fmt command parses a script and prints it in canonical native form:
backslash-separated headers, one value per line, a blank line between sections.
Comments and blank lines are not preserved. Legacy .reg files are converted.

Example:
  regapply fmt settings.txt
  regapply fmt settings.txt --diff
  regapply fmt export.reg > settings.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(args[0])
		},
	}
}

func runFmt(path string) error {
	orig, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	doc, err := script.ParseBytes(orig, parseOptions())
	if err != nil {
		return err
	}
	out, err := script.Format(doc)
	if err != nil {
		return err
	}

	if fmtDiff {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(orig)),
			B:        difflib.SplitLines(string(out)),
			FromFile: path,
			ToFile:   path + " (formatted)",
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("failed to diff: %w", err)
		}
		if _, err := fmt.Fprint(stdout, diff); err != nil {
			return err
		}
	}

	if fmtWrite {
		if bytes.Equal(orig, out) {
			printVerbose("%s already formatted\n", path)
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat script: %w", err)
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write script: %w", err)
		}
		printVerbose("%s %s\n", styled(successStyle, "✓ Formatted"), path)
		return nil
	}

	if !fmtDiff {
		_, err = stdout.Write(out)
	}
	return err
}
