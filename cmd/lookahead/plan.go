package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lookahead/internal/cli"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build and print a plan for each merchant",
	Long: `Builds the lookahead tree from each merchant's starting state and prints the
plan the selection policy picks. Nothing is executed. The plan is saved to the
plan store so that "simulate --resume" can pick it up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(cmd)
		printBanner(opts)
		return cli.RunPlan(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
