package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lookahead/internal/cli"
	"github.com/aretw0/lookahead/internal/logging"
	"github.com/aretw0/lookahead/internal/presentation/tui"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "lookahead",
	Short: "Lookahead plans trades by exploring the moves ahead",
	Long: `Lookahead builds a bounded tree of the actions a merchant can take from its
current state, picks the most promising path with a selection policy and
executes it step by step, replanning whenever the market moves.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		l, err := cli.CreateLogger(level)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "Log level written to stderr: debug, info, warn or error (silent when empty)")
	pf.StringP("scenario", "s", "scenario.yaml", "Scenario file (YAML or JSON)")
	pf.StringP("agent", "a", "", "Merchant to operate on (default: every merchant)")
	pf.String("policy", "", "Selection policy: greedy, final-level, trend or goal")
	pf.String("goal", "", "Goal expression, e.g. 'money >= 100 && location == \"b\"'")
	pf.IntP("depth", "d", 0, "Lookahead depth (default: scenario max_depth, then 5)")
	pf.String("guard", "", "Repetition guard: name or key")
	pf.Int("workers", 0, "Parallel expansion workers per level (0 means one per CPU)")
	pf.StringP("format", "f", cli.FormatText, "Output format: text or json")
	pf.String("store", "memory", "Plan store: memory, file[:dir], loam[:dir] or redis://addr")
}

// optionsFrom collects the persistent flags.
func optionsFrom(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{Out: cmd.OutOrStdout(), Logger: logger}
	opts.ScenarioPath, _ = flags.GetString("scenario")
	opts.Agent, _ = flags.GetString("agent")
	opts.Policy, _ = flags.GetString("policy")
	opts.Goal, _ = flags.GetString("goal")
	opts.Depth, _ = flags.GetInt("depth")
	opts.Guard, _ = flags.GetString("guard")
	opts.Workers, _ = flags.GetInt("workers")
	opts.Format, _ = flags.GetString("format")
	opts.Store, _ = flags.GetString("store")
	return opts
}

func printBanner(opts cli.Options) {
	if opts.Format == cli.FormatText && cli.IsTerminal(opts.Out) {
		tui.PrintBanner(opts.Out)
	}
}
