package fleet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/fleet"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/session"
	"github.com/aretw0/lookahead/pkg/trade"
)

func arbitrageWorld(t *testing.T) *trade.World {
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
	return w
}

func newFleet(w *trade.World, sessions *session.Manager) *fleet.Fleet {
	return fleet.New(w, sessions, fleet.WithEngine(runtime.NewEngine(runtime.WithMaxDepth(3))))
}

func TestFleet_PlanAndStep(t *testing.T) {
	ctx := context.Background()
	f := newFleet(arbitrageWorld(t), session.NewManager(memory.NewStore()))

	view, err := f.Plan(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"buy(ore)", "travel(b)", "sell(ore)"}, view.Steps)
	assert.Equal(t, 0, view.Position)
	assert.Equal(t, 3, view.Remaining)
	assert.Equal(t, 3.0, view.Gain)

	res, diff, err := f.Step(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "buy(ore)", res.Label)
	assert.Equal(t, int64(-9), diff.MoneyDelta)
	assert.Equal(t, map[string]int64{"ore": 1}, diff.StockDelta)

	res, diff, err = f.Step(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "travel(b)", res.Label)
	require.NotNil(t, diff.Location)
	assert.Equal(t, "b", *diff.Location)

	_, _, err = f.Step(ctx, "m1")
	require.NoError(t, err)

	m, err := f.Merchant("m1")
	require.NoError(t, err)
	assert.Equal(t, int64(14), m.Money)
	assert.Equal(t, "b", m.Location)

	_, _, err = f.Step(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrPlanExhausted, "nothing is worth doing from b")
}

func TestFleet_ResumesStoredPlan(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t)
	sessions := session.NewManager(memory.NewStore())

	first := newFleet(w, sessions)
	view, err := first.Plan(ctx, "m1")
	require.NoError(t, err)
	_, _, err = first.Step(ctx, "m1")
	require.NoError(t, err)

	second := newFleet(w, sessions)
	resumed, err := second.Plan(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, view.PlanID, resumed.PlanID)
	assert.Equal(t, 1, resumed.Position)

	res, _, err := second.Step(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "travel(b)", res.Label)
	assert.False(t, res.Replanned)
}

func TestFleet_PriceChangeTriggersReplan(t *testing.T) {
	ctx := context.Background()
	f := newFleet(arbitrageWorld(t), session.NewManager(memory.NewStore()))

	before, err := f.Plan(ctx, "m1")
	require.NoError(t, err)

	require.NoError(t, f.SetPrices("b", "ore", 20, 20))

	res, _, err := f.Step(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, res.Replanned)
	assert.Equal(t, runner.ReasonWorldChanged, res.Reason)
	assert.NotEqual(t, before.PlanID, res.PlanID)
}

func TestFleet_NilLoggerKeepsDefault(t *testing.T) {
	w := arbitrageWorld(t)
	f := fleet.New(w, session.NewManager(memory.NewStore()), fleet.WithLogger(nil))

	require.NotPanics(t, func() {
		require.NoError(t, f.SetPrices("a", "ore", 5, 5))
	})
	assert.Equal(t, uint64(1), w.Version())
}

func TestFleet_Replan(t *testing.T) {
	ctx := context.Background()
	f := newFleet(arbitrageWorld(t), session.NewManager(memory.NewStore()))

	first, err := f.Plan(ctx, "m1")
	require.NoError(t, err)
	second, err := f.Replan(ctx, "m1")
	require.NoError(t, err)

	assert.NotEqual(t, first.PlanID, second.PlanID)
	assert.Equal(t, first.Steps, second.Steps)
}

func TestFleet_Tree(t *testing.T) {
	ctx := context.Background()
	f := newFleet(arbitrageWorld(t), session.NewManager(memory.NewStore()))

	tree, plan, err := f.Tree(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Levels())
	assert.Equal(t, 3, plan.Len())

	_, err = f.Sessions.Load(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound, "inspecting a tree installs nothing")
}

func TestFleet_UnknownAgent(t *testing.T) {
	ctx := context.Background()
	f := newFleet(arbitrageWorld(t), session.NewManager(memory.NewStore()))

	_, err := f.Plan(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, _, err = f.Step(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, _, err = f.Tree(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, err = f.Merchant("ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestNewPlanView_NoPlan(t *testing.T) {
	v := fleet.NewPlanView("m1", runner.Cursor{})
	assert.Equal(t, "m1", v.AgentID)
	assert.Empty(t, v.Steps)
	assert.NotNil(t, v.Steps)
}
