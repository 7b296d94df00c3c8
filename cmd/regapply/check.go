package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/joshuapare/regapply/pkg/script"
	"github.com/joshuapare/regapply/pkg/types"
)

var checkFormat string

func init() {
	cmd := newCheckCmd()
	cmd.Flags().StringVar(&checkFormat, "format", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>...",
		Short: "Validate scripts without touching a store",
		Long: `The check command parses each script and coerces every value, reporting
all problems found. No store is opened.

Example:
  regapply check settings.txt
  regapply check settings.txt --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
}

func runCheck(paths []string) error {
	format := strings.ToLower(checkFormat)
	if jsonOut {
		format = "json"
	}
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", checkFormat)
	}

	l := limits()
	var (
		views []documentView
		errs  []error
	)
	for _, path := range paths {
		doc, err := script.ParseFile(path, parseOptions())
		if err == nil {
			err = script.Check(doc, &l)
		}
		v := documentView{File: path, Groups: []groupView{}}
		if doc != nil {
			v = viewDocument(path, doc)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			v.Errors = splitErrors(err)
		}
		views = append(views, v)

		if format == "text" {
			reportCheck(path, doc, err)
		}
	}

	switch format {
	case "json":
		if err := printJSON(views); err != nil {
			return err
		}
	case "yaml":
		data, err := yaml.Marshal(views)
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func reportCheck(path string, doc *types.Document, err error) {
	if err == nil {
		printInfo("%s %s: %d sections, %d values\n",
			styled(successStyle, "✓"), path, len(doc.Groups), doc.DirectiveCount())
		return
	}
	printInfo("%s %s\n", styled(errorStyle, "✗"), path)
	for _, msg := range splitErrors(err) {
		printInfo("  %s\n", styled(mutedStyle, msg))
	}
}

// splitErrors flattens an errors.Join tree into its messages.
func splitErrors(err error) []string {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range j.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
