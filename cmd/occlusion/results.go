package main

import (
	"os"

	"github.com/aretw0/occlusion/internal/cli"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results [session]",
	Short: "Print stored trial records",
	Long:  `Prints the records of a session as JSON lines. Without a session, lists the stored sessions.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return cli.ListSessions(cmd.Context(), store, os.Stdout)
		}
		return cli.PrintResults(cmd.Context(), store, args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	addStoreFlags(resultsCmd, cli.StoreFile)
}
