package main

import (
	"os"

	"github.com/aretw0/occlusion/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <experiment>",
	Short: "Summarize the timing of an experiment",
	Long: `Prints a markdown table of the trials with their expected durations.
With --graph, prints a Mermaid diagram (graph TD) of one trial's timeline instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, _ := cmd.Flags().GetBool("graph")
		trial, _ := cmd.Flags().GetInt("trial")
		raw, _ := cmd.Flags().GetBool("raw")

		return cli.Describe(cli.DescribeOptions{
			ExperimentPath: args[0],
			Graph:          graph,
			Trial:          trial,
			Raw:            raw,
		}, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("graph", false, "Print a Mermaid diagram of one trial")
	describeCmd.Flags().Int("trial", 0, "Trial shown by --graph")
	describeCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
