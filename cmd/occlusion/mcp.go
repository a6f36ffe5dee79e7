package main

import (
	"github.com/aretw0/occlusion/internal/cli"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes trial creation, headless simulation and stored results as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.ServeMCP(signals.Context(), cli.MCPOptions{
			Transport: transport,
			Addr:      addr,
			Store:     store,
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	addStoreFlags(mcpCmd, cli.StoreFile)
}
