package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/occlusion"
	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/aretw0/occlusion/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// PluginsURI is the resource listing the registered trial types.
const PluginsURI = "occlusion://plugins"

// RegistryFactory builds the plugin registry for one simulation.
type RegistryFactory func(clk ports.Clock) *registry.Registry

// CreateArgs are the arguments of the create_trials tool.
type CreateArgs struct {
	Params map[string]any `json:"params"`
}

// CreateResponse lists the resolved trial configurations.
type CreateResponse struct {
	Trials []domain.TrialConfig `json:"trials" jsonschema_description:"Resolved trial configurations"`
}

// SimulateArgs are the arguments of the simulate tool.
type SimulateArgs struct {
	SessionID string           `json:"session_id"`
	Trials    []map[string]any `json:"trials"`
}

// SimulateResponse reports a headless run.
type SimulateResponse struct {
	SessionID string               `json:"session_id" jsonschema_description:"Session the records were stored under"`
	Results   []domain.TrialResult `json:"results" jsonschema_description:"One record per trial, in order"`
	ElapsedMS int64                `json:"elapsed_ms" jsonschema_description:"Virtual time the run took"`
}

// ResultsArgs are the arguments of the session_results tool.
type ResultsArgs struct {
	SessionID string `json:"session_id"`
}

// ResultsResponse holds the stored records of one session.
type ResultsResponse struct {
	Results []domain.TrialResult `json:"results"`
}

// Server exposes trial creation and headless simulation as MCP tools.
type Server struct {
	plugins   RegistryFactory
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(plugins RegistryFactory, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		plugins:  plugins,
		sessions: sessions,
		logger:   logging.NewNop(),
		mcpServer: server.NewMCPServer("occlusion-mcp", occlusion.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on ln until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	baseURL := "http://" + ln.Addr().String()
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mcp server listening (sse)", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	createTool := mcp.NewTool("create_trials",
		mcp.WithDescription("Resolve one parameter object into trial configurations, applying defaults and validation."),
		mcp.WithObject("params", mcp.Required(), mcp.Description("Trial parameters, e.g. {\"stimuli\": [\"a.png\"]}")),
		mcp.WithOutputSchema[CreateResponse](),
	)
	s.mcpServer.AddTool(createTool, mcp.NewStructuredToolHandler(s.handleCreate))

	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Run trials headless on a virtual clock and store their records under the session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to store the records under")),
		mcp.WithArray("trials", mcp.Required(), mcp.Description("Trial parameter objects"),
			mcp.Items(map[string]any{"type": "object"})),
		mcp.WithOutputSchema[SimulateResponse](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	resultsTool := mcp.NewTool("session_results",
		mcp.WithDescription("List the stored records of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ResultsResponse](),
	)
	s.mcpServer.AddTool(resultsTool, mcp.NewStructuredToolHandler(s.handleResults))
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest, args CreateArgs) (CreateResponse, error) {
	trials, err := s.plugins(clock.NewSystem()).Create(withType(args.Params))
	if err != nil {
		return CreateResponse{}, err
	}
	return CreateResponse{Trials: trials}, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (SimulateResponse, error) {
	if args.SessionID == "" {
		return SimulateResponse{}, errors.New("session_id is required")
	}
	for i, p := range args.Trials {
		args.Trials[i] = withType(p)
	}

	clk := clock.NewVirtual(time.Now())
	surface := memory.NewSurface(memory.WithClock(clk))
	run := runner.NewRunner(s.plugins(clk),
		runner.WithStore(s.sessions.Store()),
		runner.WithSessionID(args.SessionID),
		runner.WithClock(clk),
		runner.WithLogger(s.logger),
	)

	trials, err := run.Expand(args.Trials)
	if err != nil {
		return SimulateResponse{}, err
	}

	var report runner.Report
	err = s.sessions.WithLock(ctx, args.SessionID, func(ctx context.Context) error {
		var err error
		report, err = run.Run(ctx, surface, trials)
		return err
	})
	if err != nil {
		s.logger.Error("mcp simulation failed", "session_id", args.SessionID, "err", err)
		return SimulateResponse{}, err
	}

	return SimulateResponse{
		SessionID: args.SessionID,
		Results:   report.Results,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}, nil
}

func (s *Server) handleResults(ctx context.Context, request mcp.CallToolRequest, args ResultsArgs) (ResultsResponse, error) {
	results, err := s.sessions.Results(ctx, args.SessionID)
	if err != nil {
		return ResultsResponse{}, err
	}
	return ResultsResponse{Results: results}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PluginsURI, "Registered trial types",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.plugins(clock.NewSystem()).Types())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PluginsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func withType(params map[string]any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	if _, ok := params["type"]; !ok {
		params["type"] = domain.TrialType
	}
	return params
}
