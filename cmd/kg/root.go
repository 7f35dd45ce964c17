package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/config"
	"github.com/kgraph/kgcore/internal/engine"
)

var (
	dataPath   string
	configPath string
	jsonOutput bool
	pathBase   string
)

var rootCmd = &cobra.Command{
	Use:   "kg",
	Short: "kg is a minimal exercise harness over the kgcore knowledge-graph engine",
	Long: `kg opens a knowledge-graph store, applies a command, and exits.
It is not a daemon and keeps no session state between invocations.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "kg.jsonl", "path to the append-only log (or DSN, for sql-backed)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional YAML config file (§6 Configuration)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of plain text")
	rootCmd.PersistentFlags().StringVar(&pathBase, "base", ".", "base directory export/import/backup paths must resolve within (§6 path safety)")

	rootCmd.AddCommand(entityCmd, relationCmd, searchCmd, traverseCmd, exportCmd, importCmd, configCmd)
}

// openEngine is the one place every subcommand builds its Engine, so flag
// handling for --data/--config stays in a single spot.
func openEngine(ctx context.Context) (*engine.Engine, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	return engine.Open(ctx, cfg, dataPath)
}
