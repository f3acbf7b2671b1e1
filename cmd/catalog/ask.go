package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm/providers"
	"github.com/eolecvk/ai-catalog-sub002/internal/orchestrator"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.Engine.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Engine.RequestTimeout)
		defer cancel()
	}

	provider, err := providers.New(cfg.LLM.Provider, cfg.LLM.ProviderConfig())
	if err != nil {
		return err
	}

	client, err := graph.NewNeo4jClient(graph.Config{
		URI:                   cfg.Neo4j.URI,
		Username:              cfg.Neo4j.Username,
		Password:              cfg.Neo4j.Password,
		Database:              cfg.Neo4j.Database,
		MaxConnectionPoolSize: cfg.Neo4j.MaxPoolSize,
		ConnectionTimeout:     cfg.Neo4j.ConnectionTimeout,
	})
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close(cmd.Context())

	engine := orchestrator.NewEngine(provider, client, schema.Default(), slog.Default())
	result, err := engine.Ask(ctx, strings.Join(args, " "), nil)
	if err != nil {
		return err
	}

	if askJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(encoded))
		return nil
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *orchestrator.FinalResult) {
	if result.Message != "" {
		cmd.Println(result.Message)
	}
	if qr := result.QueryResult; qr != nil {
		if qr.Analysis != "" {
			cmd.Println(qr.Analysis)
		}
		if qr.GraphData != nil && !qr.GraphData.IsEmpty() {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d nodes, %d edges\n",
				qr.GraphData.NodeCount(), qr.GraphData.EdgeCount())
			for _, n := range qr.GraphData.Nodes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", n.Label, n.Group)
			}
		}
		if qr.CypherQuery != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nquery: %s\n", qr.CypherQuery)
		}
		if qr.AutoRecovered {
			cmd.Println("note: the query was automatically corrected after a failure")
		}
	}
	if len(result.Suggestions) > 0 {
		cmd.Println("\nYou could try:")
		for _, s := range result.Suggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s)
		}
	}
	if !result.Success && result.Message == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", result.Error)
	}
}
