package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "inspect or scaffold configuration (§6 Configuration)",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print the effective configuration as resolved from defaults, file, and environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(configPath)
		if err != nil {
			return err
		}
		return printJSON(cfg.All())
	},
}

var configWriteExampleCmd = &cobra.Command{
	Use:   "write-example PATH",
	Short: "write every config key at its default as a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteExampleTOML(args[0]); err != nil {
			return err
		}
		fmt.Println("wrote", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configWriteExampleCmd)
}
