package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lookahead/internal/cli"
	"github.com/aretw0/lookahead/pkg/runner"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Execute the merchants' plans against the scenario market",
	Long: `Runs the scenario round by round. Each round applies the price shocks
scheduled for it and executes one action per merchant. Plans are rebuilt when
they run out or when the market changes under them.

Ctrl+C stops the simulation between two rounds and prints where every
merchant ended up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ticks, _ := cmd.Flags().GetInt("ticks")
		resume, _ := cmd.Flags().GetBool("resume")

		opts := optionsFrom(cmd)
		printBanner(opts)

		sm := runner.NewSignalManager()
		defer sm.Stop()

		err := cli.RunSimulate(cmd.Context(), cli.SimulateOptions{
			Options:    opts,
			Ticks:      ticks,
			Resume:     resume,
			Interrupts: sm.Interrupts(),
		})
		if errors.Is(err, runner.ErrInterrupted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "simulation interrupted")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntP("ticks", "t", cli.DefaultTicks, "Number of rounds to simulate")
	simulateCmd.Flags().Bool("resume", false, "Continue the plans saved in the plan store")
}
