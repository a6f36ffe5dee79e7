package main

import (
	"github.com/aretw0/occlusion/internal/cli"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves trial creation, headless simulation, stored results and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.Serve(signals.Context(), cli.ServeOptions{
			Addr:  addr,
			Store: store,
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	addStoreFlags(serveCmd, cli.StoreMemory)
}
