package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/internal/logging"
	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/fleet"
	"github.com/aretw0/lookahead/pkg/session"
	"github.com/aretw0/lookahead/pkg/trade"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m, err := trade.NewMarket(2, 1,
		trade.NewStation("a").AddGood("ore", 50, 9, 9),
		trade.NewStation("b").AddGood("ore", 50, 14, 14),
	)
	require.NoError(t, err)
	s := trade.NewState(m, "a", 11)
	s.Capacity["ore"] = 10
	w := trade.NewWorld(m)
	require.NoError(t, w.AddMerchant("m1", s))

	f := fleet.New(w, session.NewManager(memory.NewStore()),
		fleet.WithEngine(runtime.NewEngine(runtime.WithMaxDepth(3))),
	)
	return NewServer(f, logging.NewNop())
}

func TestHandlePlan(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	view, err := s.handlePlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "m1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"buy(ore)", "travel(b)", "sell(ore)"}, view.Steps)

	again, err := s.handlePlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "m1", "replan": true})
	require.NoError(t, err)
	assert.NotEqual(t, view.PlanID, again.PlanID)

	_, err = s.handlePlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "ghost"})
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestHandleStep(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	args := map[string]interface{}{"agent_id": "m1"}

	resp, err := s.handleStep(ctx, mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	assert.Equal(t, "buy(ore)", resp.Step.Label)
	assert.Equal(t, int64(-9), resp.Diff.MoneyDelta)
	assert.Equal(t, 1, resp.Plan.Position)
	assert.Equal(t, 2, resp.Plan.Remaining)

	for i := 0; i < 2; i++ {
		_, err = s.handleStep(ctx, mcp.CallToolRequest{}, args)
		require.NoError(t, err)
	}
	_, err = s.handleStep(ctx, mcp.CallToolRequest{}, args)
	assert.ErrorIs(t, err, domain.ErrPlanExhausted)
}

func TestHandleTree(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleTree(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "m1"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Depth)
	assert.Equal(t, 3.0, resp.Gain)
	assert.Empty(t, resp.Mermaid)

	resp, err = s.handleTree(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "m1", "mermaid": true})
	require.NoError(t, err)
	assert.Contains(t, resp.Mermaid, "graph TD")

	_, err = s.handleTree(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "ghost"})
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestHandleSetPrices(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	call := func(args map[string]any) *mcp.CallToolResult {
		t.Helper()
		req := mcp.CallToolRequest{}
		req.Params.Arguments = args
		res, err := s.handleSetPrices(ctx, req)
		require.NoError(t, err)
		return res
	}

	res := call(map[string]any{"station": "a", "good": "ore", "sell_price": 5.0, "buy_price": 4.0})
	assert.False(t, res.IsError)
	assert.Equal(t, uint64(1), s.fleet.World.Version())

	for name, args := range map[string]map[string]any{
		"fractional price": {"station": "a", "good": "ore", "sell_price": 9.7, "buy_price": 9.0},
		"missing price":    {"station": "a", "good": "ore", "sell_price": 9.0},
		"text price":       {"station": "a", "good": "ore", "sell_price": "9", "buy_price": 9.0},
		"missing station":  {"good": "ore", "sell_price": 9.0, "buy_price": 9.0},
		"unknown station":  {"station": "z", "good": "ore", "sell_price": 9.0, "buy_price": 9.0},
	} {
		t.Run(name, func(t *testing.T) {
			res := call(args)
			assert.True(t, res.IsError)
			assert.Equal(t, uint64(1), s.fleet.World.Version(), "rejected updates leave the world alone")
		})
	}
}

func TestReadAgents(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readAgents(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, AgentsURI, text.URI)

	var agents []fleet.MerchantView
	require.NoError(t, json.Unmarshal([]byte(text.Text), &agents))
	require.Len(t, agents, 1)
	assert.Equal(t, "a", agents[0].Location)
}
