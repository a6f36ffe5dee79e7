package main

import (
	"os"

	"github.com/aretw0/occlusion/internal/cli"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <experiment>",
	Short: "Present an experiment",
	Long: `Loads an experiment file (YAML, TOML or JSON) and presents its trials on the terminal.
Press Esc or Ctrl+C to stop. With --headless, or when stdout is not a terminal,
trials run on a recording surface in simulated time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		sessionID, _ := cmd.Flags().GetString("session")
		quiet, _ := cmd.Flags().GetBool("quiet")

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.Run(signals.Context(), cli.RunOptions{
			ExperimentPath: args[0],
			Headless:       headless,
			SessionID:      sessionID,
			Store:          store,
			Quiet:          quiet,
		}, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run on a recording surface in simulated time")
	runCmd.Flags().StringP("session", "s", "", "Session (participant) ID (default: random)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the summary")
	addStoreFlags(runCmd, cli.StoreFile)
}
