package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regapply/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialise the configuration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stdout = cmd.OutOrStdout()
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, path, err := config.Load(config.LoadOptions{ConfigFile: cfgFile, Flags: cmd.Flags()})
		if err != nil {
			return err
		}
		data, err := c.TOML()
		if err != nil {
			return err
		}
		if path != "" {
			printInfo("# loaded from %s\n", path)
		}
		_, err = stdout.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, config.ConfigFileName)
		}
		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		printInfo("%s %s\n", styled(successStyle, "✓ Wrote"), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

