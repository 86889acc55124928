package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/lookahead/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuildStart: func(ctx context.Context, e *domain.BuildEvent) {
			logger.DebugContext(ctx, "build_start", "max_depth", e.MaxDepth)
		},
		OnBuildDone: func(ctx context.Context, e *domain.BuildEvent) {
			logger.DebugContext(ctx, "build_done",
				"nodes", e.Nodes,
				"levels", e.Levels,
				"duration", e.Duration,
			)
		},
		OnPlanSelected: func(ctx context.Context, e *domain.PlanEvent) {
			logger.DebugContext(ctx, "plan_selected",
				"policy", e.Policy,
				"found", e.Found,
				"steps", e.Steps,
				"gain", e.Gain,
			)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"agent", e.AgentID,
				"action", e.Action,
				"position", e.Position,
			)
		},
		OnInvalidate: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "invalidate",
				"agent", e.AgentID,
				"plan_id", e.PlanID,
				"reason", e.Reason,
			)
		},
	}
}

// Merge combines hook sets. Each event is delivered to every set, in order.
func Merge(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnBuildStart = chain(out.OnBuildStart, h.OnBuildStart)
		out.OnBuildDone = chain(out.OnBuildDone, h.OnBuildDone)
		out.OnPlanSelected = chain(out.OnPlanSelected, h.OnPlanSelected)
		out.OnStep = chain(out.OnStep, h.OnStep)
		out.OnInvalidate = chain(out.OnInvalidate, h.OnInvalidate)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
