package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the graph schema the engine plans against",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := schema.Default()
		cmd.Println(catalog.PromptDescription())
		cmd.Println("\nExample questions:")
		for _, q := range catalog.ExampleQueries {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", q)
		}
		return nil
	},
}
