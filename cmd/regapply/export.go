package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/joshuapare/regapply/internal/regtext"
	"github.com/joshuapare/regapply/internal/store"
	"github.com/joshuapare/regapply/pkg/types"
)

var (
	exportRoot     string
	exportFormat   string
	exportOutput   string
	exportEncoding string
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVar(&exportRoot, "root", "", "Only export containers under this root (e.g. HKCU)")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "native", "Output format: native, reg or yaml")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&exportEncoding, "output-encoding", "UTF-8", "Encoding for reg output: UTF-8 or UTF-16LE")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump the configured store",
		Long: `The export command lists every container and value in the store. Only the
sqlite and memory backends can be listed.

Example:
  regapply export --store sqlite --db state.db
  regapply export --root HKCU --format reg --output-encoding UTF-16LE -o user.reg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd)
		},
	}
}

func runExport(cmd *cobra.Command) error {
	var root types.RootKey
	if exportRoot != "" {
		r, ok := types.ParseRootName(strings.ToUpper(exportRoot))
		if !ok {
			return fmt.Errorf("unknown root %q", exportRoot)
		}
		root = r
	}

	backend, err := store.Open(cmd.Context(), cfg.Store, limits())
	if err != nil {
		return err
	}
	defer backend.Close()

	keys, err := backend.Dump(cmd.Context())
	if err != nil {
		return err
	}
	if root != 0 {
		kept := keys[:0]
		for _, k := range keys {
			if k.Path.Root == root {
				kept = append(kept, k)
			}
		}
		keys = kept
	}

	var data []byte
	switch strings.ToLower(exportFormat) {
	case "native":
		data, err = regtext.EmitNative(regtext.DocumentFromDump(keys))
	case "reg":
		data, err = regtext.ExportReg(keys, regtext.ExportOptions{
			OutputEncoding: exportEncoding,
			WithBOM:        strings.EqualFold(exportEncoding, regtext.EncodingUTF16LE),
		})
	case "yaml":
		data, err = yaml.Marshal(viewDump(keys))
	default:
		return fmt.Errorf("unknown format %q (want native, reg or yaml)", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	printVerbose("%s %d containers to %s\n", styled(successStyle, "✓ Exported"), len(keys), styled(pathStyle, exportOutput))
	return nil
}
