package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

func arbitrageWorld(t *testing.T, money int64) *trade.World {
	t.Helper()
	m, err := trade.NewMarket(2, 1,
		trade.NewStation("a").AddGood("ore", 50, 9, 9),
		trade.NewStation("b").AddGood("ore", 50, 14, 14),
	)
	require.NoError(t, err)

	s := trade.NewState(m, "a", money)
	s.Capacity["ore"] = 10

	w := trade.NewWorld(m)
	require.NoError(t, w.AddMerchant("m1", s))
	return w
}

func TestRunner_StepsThroughPlan(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)
	r := runner.NewRunner("m1", w, trade.Generator{})

	var labels []string
	for {
		res, err := r.Step(ctx)
		if errors.Is(err, domain.ErrPlanExhausted) {
			break
		}
		require.NoError(t, err)
		labels = append(labels, res.Label)
		assert.Equal(t, len(labels), res.Position)
		if len(labels) == 1 {
			assert.True(t, res.Replanned)
			assert.Equal(t, runner.ReasonInitial, res.Reason)
		} else {
			assert.False(t, res.Replanned)
		}
	}

	assert.Equal(t, []string{"buy(ore)", "travel(b)", "sell(ore)"}, labels)

	m, err := w.Merchant("m1")
	require.NoError(t, err)
	assert.Equal(t, int64(14), m.Money)
	assert.Equal(t, "b", m.Location)
}

func TestRunner_ReplansWhenWorldChanges(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)

	var invalidated []*domain.StepEvent
	r := runner.NewRunner("m1", w, trade.Generator{},
		runner.WithLifecycleHooks(domain.LifecycleHooks{
			OnInvalidate: func(ctx context.Context, ev *domain.StepEvent) {
				invalidated = append(invalidated, ev)
			},
		}),
	)

	res, err := r.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, "buy(ore)", res.Label)
	firstPlan := res.PlanID

	// Ore collapses at b: carrying it there is no longer worth it.
	require.NoError(t, w.SetPrices("b", "ore", 14, 1))

	res, err = r.Step(ctx)
	require.NoError(t, err)
	assert.True(t, res.Replanned)
	assert.Equal(t, runner.ReasonWorldChanged, res.Reason)
	assert.NotEqual(t, firstPlan, res.PlanID)
	assert.NotEqual(t, "travel(b)", res.Label)

	require.Len(t, invalidated, 1)
	assert.Equal(t, firstPlan, invalidated[0].PlanID)
	assert.Equal(t, 1, invalidated[0].Position)
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)

	var steps int
	r := runner.NewRunner("m1", w, trade.Generator{},
		runner.WithLifecycleHooks(domain.LifecycleHooks{
			OnStep: func(ctx context.Context, ev *domain.StepEvent) { steps++ },
		}),
	)

	n, err := r.Run(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "after selling at b nothing is profitable")
	assert.Equal(t, 3, steps)

	m, err := w.Merchant("m1")
	require.NoError(t, err)
	assert.Equal(t, int64(14), m.Money)
}

func TestRunner_RunLimit(t *testing.T) {
	r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{})
	n, err := r.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.Cursor().Remaining())
}

func TestRunner_RunInterrupted(t *testing.T) {
	stop := make(chan struct{})
	close(stop)

	r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{}, runner.WithInterruptSource(stop))
	n, err := r.Run(context.Background(), 0)
	assert.ErrorIs(t, err, runner.ErrInterrupted)
	assert.Zero(t, n)
}

func TestRunner_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{})
	_, err := r.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_NothingProfitable(t *testing.T) {
	r := runner.NewRunner("m1", arbitrageWorld(t, 10), trade.Generator{})

	_, err := r.Step(context.Background())
	assert.ErrorIs(t, err, domain.ErrPlanExhausted, "the greedy plan is empty")

	n, err := r.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunner_GoalUnreachable(t *testing.T) {
	goal, err := trade.CompileGoal("money > 1000")
	require.NoError(t, err)

	r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{},
		runner.WithSelector(runtime.GoalSelector(goal)),
	)
	_, err = r.Step(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoPlan)

	n, err := r.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunner_UnknownAgent(t *testing.T) {
	r := runner.NewRunner("ghost", arbitrageWorld(t, 11), trade.Generator{})
	_, err := r.Step(context.Background())
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestRunner_PersistsAndResumes(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)
	store := memory.NewStore()

	first := runner.NewRunner("m1", w, trade.Generator{}, runner.WithStore(store))
	res, err := first.Step(ctx)
	require.NoError(t, err)

	rec, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, res.PlanID, rec.PlanID)
	assert.Equal(t, 1, rec.Position)
	assert.Len(t, rec.Steps, 3)

	// A second process picks up where the first stopped.
	second := runner.NewRunner("m1", w, trade.Generator{},
		runner.WithStore(store),
		runner.WithResolver(trade.Resolver{}),
	)
	plan, err := second.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.PlanID, plan.ID)
	assert.Equal(t, 1, second.Cursor().Position())

	res, err = second.Step(ctx)
	require.NoError(t, err)
	assert.False(t, res.Replanned)
	assert.Equal(t, "travel(b)", res.Label)
}

func TestRunner_ResumeStalePlan(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)
	store := memory.NewStore()

	first := runner.NewRunner("m1", w, trade.Generator{}, runner.WithStore(store))
	res, err := first.Step(ctx)
	require.NoError(t, err)

	require.NoError(t, w.SetPrices("a", "ore", 9, 9))

	second := runner.NewRunner("m1", w, trade.Generator{},
		runner.WithStore(store),
		runner.WithResolver(trade.Resolver{}),
	)
	plan, err := second.Resume(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, res.PlanID, plan.ID)
	assert.Zero(t, second.Cursor().Position())
}

func TestRunner_ResumeWithoutStoredPlan(t *testing.T) {
	r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{},
		runner.WithStore(memory.NewStore()),
	)
	plan, err := r.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Len())
}

func TestRunner_ResumeNeedsResolver(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)
	store := memory.NewStore()

	_, err := runner.NewRunner("m1", w, trade.Generator{}, runner.WithStore(store)).Step(ctx)
	require.NoError(t, err)

	_, err = runner.NewRunner("m1", w, trade.Generator{}, runner.WithStore(store)).Resume(ctx)
	assert.ErrorContains(t, err, "resolver")
}

func TestRunner_RejectedStepDropsPlan(t *testing.T) {
	ctx := context.Background()
	w := arbitrageWorld(t, 11)
	r := runner.NewRunner("m1", w, trade.Generator{})

	_, err := r.Replan(ctx)
	require.NoError(t, err)

	// Someone else spends the merchant's money behind the runner's back.
	require.NoError(t, w.Apply(ctx, "m1", trade.Travel{To: "b"}))

	_, err = r.Step(ctx)
	assert.ErrorIs(t, err, domain.ErrActionNotApplicable)
	assert.False(t, r.Cursor().Active())
}

func TestRunner_Reporters(t *testing.T) {
	ctx := context.Background()

	t.Run("Text", func(t *testing.T) {
		var out bytes.Buffer
		r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{},
			runner.WithReporter(runner.NewTextReporter(&out)),
		)
		_, err := r.Run(ctx, 0)
		require.NoError(t, err)

		text := out.String()
		assert.Contains(t, text, "**m1** new plan")
		assert.Contains(t, text, "1. buy(ore)")
		assert.Contains(t, text, "m1 step 3: sell(ore) (0 left)")
		assert.Contains(t, text, "_nothing worth doing_")
	})

	t.Run("JSON", func(t *testing.T) {
		var out bytes.Buffer
		r := runner.NewRunner("m1", arbitrageWorld(t, 11), trade.Generator{},
			runner.WithReporter(runner.NewJSONReporter(&out)),
		)
		_, err := r.Run(ctx, 0)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5, "plan, three steps, empty plan")

		var plan runner.PlanReport
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &plan))
		assert.Equal(t, "plan", plan.Type)
		assert.Equal(t, runner.ReasonInitial, plan.Reason)
		require.Len(t, plan.Steps, 3)
		assert.Equal(t, "buy", plan.Steps[0].Name)

		var step map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &step))
		assert.Equal(t, "step", step["type"])
		assert.Equal(t, "buy(ore)", step["action"])
	})
}
