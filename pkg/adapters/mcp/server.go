package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/lookahead"
	"github.com/aretw0/lookahead/internal/presentation/graph"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/fleet"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

// AgentsURI is the resource listing every merchant and its resources.
const AgentsURI = "lookahead://agents"

// StepResponse aligns with the HTTP API and provides a unified structure across adapters.
type StepResponse struct {
	Step *runner.StepResult `json:"step" jsonschema_description:"The executed step"`
	Diff *trade.StateDiff   `json:"diff,omitempty" jsonschema_description:"How the merchant's resources changed"`
	Plan fleet.PlanView     `json:"plan" jsonschema_description:"The plan after the step"`
}

// TreeResponse describes a planning tree built from the live state.
type TreeResponse struct {
	Nodes   int      `json:"nodes" jsonschema_description:"Number of nodes in the tree"`
	Depth   int      `json:"depth" jsonschema_description:"Depth of the deepest level"`
	Plan    []string `json:"plan" jsonschema_description:"Actions the configured policy would select"`
	Gain    float64  `json:"gain" jsonschema_description:"Expected gain of that plan"`
	Mermaid string   `json:"mermaid,omitempty" jsonschema_description:"Mermaid flowchart of the tree, when requested"`
}

// Server wraps a fleet and exposes it as an MCP Server.
type Server struct {
	fleet     *fleet.Fleet
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(f *fleet.Fleet, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		fleet:     f,
		logger:    logger,
		mcpServer: server.NewMCPServer("lookahead-mcp", strings.TrimSpace(lookahead.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: plan
	planTool := mcp.NewTool("plan",
		mcp.WithDescription("Show the merchant's current plan. Set replan to discard it and plan again from the live state."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("The merchant ID")),
		mcp.WithBoolean("replan", mcp.Description("Build a fresh plan (optional)")),
		mcp.WithOutputSchema[fleet.PlanView](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlan))

	// TOOL: step
	stepTool := mcp.NewTool("step",
		mcp.WithDescription("Execute the next action of the merchant's plan against the world."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("The merchant ID")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(stepTool, mcp.NewStructuredToolHandler(s.handleStep))

	// TOOL: tree
	treeTool := mcp.NewTool("tree",
		mcp.WithDescription("Build the lookahead tree from the merchant's live state without changing its plan."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("The merchant ID")),
		mcp.WithBoolean("mermaid", mcp.Description("Include a Mermaid rendering of the tree (optional)")),
		mcp.WithOutputSchema[TreeResponse](),
	)
	s.mcpServer.AddTool(treeTool, mcp.NewStructuredToolHandler(s.handleTree))

	// TOOL: set_prices
	s.mcpServer.AddTool(mcp.NewTool("set_prices",
		mcp.WithDescription("Publish a new quote for a good at a station. Every plan is rebuilt on the next step."),
		mcp.WithString("station", mcp.Required(), mcp.Description("Station name")),
		mcp.WithString("good", mcp.Required(), mcp.Description("Good name")),
		mcp.WithNumber("sell_price", mcp.Required(), mcp.Description("Price the station sells at")),
		mcp.WithNumber("buy_price", mcp.Required(), mcp.Description("Price the station buys at")),
	), s.handleSetPrices)
}

// Handler methods for structured tools

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (fleet.PlanView, error) {
	agentID, _ := args["agent_id"].(string)
	replan, _ := args["replan"].(bool)

	var (
		view fleet.PlanView
		err  error
	)
	if replan {
		view, err = s.fleet.Replan(ctx, agentID)
	} else {
		view, err = s.fleet.Plan(ctx, agentID)
	}
	if err != nil {
		return fleet.PlanView{}, fmt.Errorf("plan failed: %w", err)
	}
	return view, nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	agentID, _ := args["agent_id"].(string)

	res, diff, err := s.fleet.Step(ctx, agentID)
	if errors.Is(err, domain.ErrPlanExhausted) {
		return StepResponse{}, fmt.Errorf("nothing worth doing for %s: %w", agentID, err)
	}
	if err != nil {
		s.logger.Error("MCP Step failed", "err", err, "agent", agentID)
		return StepResponse{}, fmt.Errorf("step failed: %w", err)
	}

	view, err := s.fleet.Plan(ctx, agentID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("step failed: %w", err)
	}
	return StepResponse{Step: res, Diff: diff, Plan: view}, nil
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TreeResponse, error) {
	agentID, _ := args["agent_id"].(string)
	withMermaid, _ := args["mermaid"].(bool)

	tree, plan, err := s.fleet.Tree(ctx, agentID)
	if tree == nil {
		return TreeResponse{}, fmt.Errorf("tree failed: %w", err)
	}

	resp := TreeResponse{Nodes: tree.Len(), Depth: tree.Depth(), Plan: []string{}}
	var overlay *graph.GraphOverlay
	if plan != nil {
		resp.Gain = plan.Gain
		for _, a := range plan.Actions {
			resp.Plan = append(resp.Plan, domain.Label(a))
		}
		overlay = graph.NewOverlay(tree.Path(tree.Node(plan.Target)))
	}
	if withMermaid {
		resp.Mermaid = graph.GenerateMermaid(tree.Nodes(), overlay)
	}
	return resp, nil
}

func (s *Server) handleSetPrices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	station, _ := args["station"].(string)
	good, _ := args["good"].(string)
	if station == "" || good == "" {
		return mcp.NewToolResultError("price update rejected: station and good are required"), nil
	}

	sell, err := priceArg(args, "sell_price")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("price update rejected: %v", err)), nil
	}
	buy, err := priceArg(args, "buy_price")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("price update rejected: %v", err)), nil
	}

	if err := s.fleet.SetPrices(station, good, sell, buy); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("price update rejected: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("world version %d", s.fleet.World.Version())), nil
}

// priceArg reads a whole-number price. JSON numbers arrive as float64.
func priceArg(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(AgentsURI, "Merchants",
		mcp.WithMIMEType("application/json"),
	), s.readAgents)
}

func (s *Server) readAgents(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	agents := make([]fleet.MerchantView, 0)
	for _, id := range s.fleet.Agents() {
		m, err := s.fleet.Merchant(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read merchant %s: %w", id, err)
		}
		agents = append(agents, m)
	}
	jsonBytes, err := json.Marshal(agents)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      AgentsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
