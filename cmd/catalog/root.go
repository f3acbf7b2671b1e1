package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eolecvk/ai-catalog-sub002/internal/config"
	"github.com/eolecvk/ai-catalog-sub002/internal/logging"
)

var (
	configFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "catalog - natural-language queries over the AI product graph",
	Long: `catalog answers natural-language questions about industries, sectors,
departments, pain points, and the AI applications that address them,
by planning and executing graph queries against Neo4j.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default $CATALOG_CONFIG or catalog.yaml)")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(schemaCmd)
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// schema and help need no collaborators, so no config either
	if cmd.Name() == "schema" || cmd.Name() == "help" {
		return nil
	}

	path := configFile
	if path == "" {
		path = os.Getenv("CATALOG_CONFIG")
	}
	if path == "" {
		path = "catalog.yaml"
	}

	loaded, err := config.LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded

	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	return nil
}
