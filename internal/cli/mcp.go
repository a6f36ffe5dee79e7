package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/aretw0/occlusion/pkg/adapters/mcp"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Transport string
	Addr      string
	Store     StoreOptions
}

// ServeMCP exposes the trial tools over the Model Context Protocol.
// Logs must go to stderr when the transport is stdio.
func ServeMCP(ctx context.Context, opts MCPOptions, logger *slog.Logger) error {
	backend, err := OpenStore(ctx, opts.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	plugins := func(clk ports.Clock) *registry.Registry {
		return newRegistry(clk, logger)
	}
	srv := mcp.NewServer(plugins, backend.Sessions(logger), mcp.WithLogger(logger))

	switch opts.Transport {
	case TransportStdio:
		logger.Info("mcp server ready (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		ln, err := net.Listen("tcp", opts.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
		}
		return srv.ServeSSE(ctx, ln, ShutdownTimeout)
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", opts.Transport, TransportStdio, TransportSSE)
	}
}
