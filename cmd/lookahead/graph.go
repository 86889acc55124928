package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lookahead/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print a merchant's lookahead tree",
	Long: `Prints the lookahead tree of one merchant (--agent, default the first one) as a
Mermaid flowchart with the selected path highlighted. With --format json the
tree is printed as a list of edges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunGraph(cmd.Context(), optionsFrom(cmd))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
