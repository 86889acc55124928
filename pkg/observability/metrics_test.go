package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/observability"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

func newWorld(t *testing.T) *trade.World {
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

func TestMetrics_RecordsPlanningAndSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := metrics.Hooks()
	w := newWorld(t)
	r := runner.NewRunner("m1", w, trade.Generator{},
		runner.WithEngine(runtime.NewEngine(runtime.WithLifecycleHooks(hooks))),
		runner.WithLifecycleHooks(hooks),
	)

	ctx := context.Background()
	_, err = r.Step(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SetPrices("b", "ore", 14, 13))
	_, err = r.Step(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Builds))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Plans.WithLabelValues(domain.PolicyGreedy, "found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Steps.WithLabelValues("m1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Invalidations.WithLabelValues("m1")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Steps), "one series per agent")
}

func TestMetrics_NoPlanOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	metrics.Hooks().OnPlanSelected(context.Background(), &domain.PlanEvent{Policy: domain.PolicyGoal})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Plans.WithLabelValues(domain.PolicyGoal, "none")))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnStep: func(context.Context, *domain.StepEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnStep: func(context.Context, *domain.StepEvent) { calls = append(calls, "b") }}

	merged := observability.Merge(a, domain.LifecycleHooks{}, b)
	merged.OnStep(context.Background(), &domain.StepEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, merged.OnBuildStart)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := runtime.NewEngine(runtime.WithLifecycleHooks(observability.LogHooks(logger)))
	_, _, err := e.Plan(context.Background(), mustSnapshot(t), trade.Generator{}, runtime.Greedy())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "build_start")
	assert.Contains(t, out, "build_done")
	assert.Contains(t, out, "plan_selected")
}

func mustSnapshot(t *testing.T) domain.State {
	t.Helper()
	s, err := newWorld(t).Snapshot(context.Background(), "m1")
	require.NoError(t, err)
	return s
}
