package main

import (
	"fmt"

	"github.com/aretw0/ussdflow/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the graph for consistency",
	Long: `Checks the graph invariants, then reports routes that point at missing
nodes and nodes that cannot be reached from the root start node.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, edges, err := loadGraph(cmd)
		if err != nil {
			return err
		}
		if err := validator.ValidateGraph(nodes, edges); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Graph is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("from", "", "Read a flow document file instead of the workspace")
}
