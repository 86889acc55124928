package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// DefaultMaxDepth is the horizon used when none is configured.
const DefaultMaxDepth = 5

// Engine builds planning trees and extracts plans from them.
// An Engine holds configuration only and may be shared; each Build starts
// from scratch.
type Engine struct {
	maxDepth int
	guard    Guard
	workers  int
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithMaxDepth bounds the number of actions in any plan.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithGuard sets the repetition guard.
func WithGuard(g Guard) EngineOption {
	return func(e *Engine) {
		e.guard = g
	}
}

// WithWorkers expands each level with up to n goroutines.
// Values below 2 keep expansion sequential. The resulting tree is identical.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		maxDepth: DefaultMaxDepth,
		guard:    GuardByName,
		workers:  1,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxDepth returns the configured horizon.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Build expands the tree breadth-first from root.
//
// Expansion stops at the configured depth, or earlier when a whole level
// produces no child. A root with no applicable action yields a one-node tree.
func (e *Engine) Build(ctx context.Context, root domain.State, gen ports.ActionGenerator) (*Tree, error) {
	if e.maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDepth, e.maxDepth)
	}
	if root == nil {
		return nil, fmt.Errorf("root state is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("action generator is required")
	}

	start := time.Now()
	if e.hooks.OnBuildStart != nil {
		e.hooks.OnBuildStart(ctx, &domain.BuildEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventBuildStart},
			MaxDepth:  e.maxDepth,
		})
	}

	tree := newTree(root)
	frontier := tree.LastLevel()

	for depth := 1; depth <= e.maxDepth; depth++ {
		children := e.expandLevel(frontier, gen)
		e.logger.Debug("level expanded",
			"depth", depth,
			"frontier", len(frontier),
			"children", len(children),
		)
		if len(children) == 0 {
			break
		}
		for _, c := range children {
			tree.register(c)
		}
		frontier = children
	}

	elapsed := time.Since(start)
	e.logger.Info("tree built",
		"nodes", tree.Len(),
		"levels", tree.Levels(),
		"duration", elapsed,
	)
	if e.hooks.OnBuildDone != nil {
		e.hooks.OnBuildDone(ctx, &domain.BuildEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBuildDone},
			MaxDepth:  e.maxDepth,
			Nodes:     tree.Len(),
			Levels:    tree.Levels(),
			Duration:  elapsed,
		})
	}

	return tree, nil
}

// Plan builds a tree and selects a plan from it.
// The tree is returned even when no plan is found, for inspection.
func (e *Engine) Plan(ctx context.Context, root domain.State, gen ports.ActionGenerator, sel Selector) (*domain.Plan, *Tree, error) {
	if sel == nil {
		sel = Greedy()
	}

	tree, err := e.Build(ctx, root, gen)
	if err != nil {
		return nil, nil, err
	}

	plan, err := e.Select(ctx, tree, sel)
	return plan, tree, err
}

// Select applies a policy to an already built tree.
func (e *Engine) Select(ctx context.Context, tree *Tree, sel Selector) (*domain.Plan, error) {
	node, err := sel.Select(tree)
	if err != nil {
		if errors.Is(err, domain.ErrNoPlan) {
			e.logger.Info("no plan selected", "policy", sel.Name())
		}
		e.notifySelected(ctx, &domain.PlanEvent{Policy: sel.Name()})
		return nil, err
	}

	plan := Reconstruct(tree, node, sel.Name())
	e.logger.Info("plan selected",
		"policy", sel.Name(),
		"plan_id", plan.ID,
		"steps", plan.Len(),
		"gain", plan.Gain,
	)
	e.notifySelected(ctx, &domain.PlanEvent{
		PlanID: plan.ID,
		Policy: sel.Name(),
		Steps:  plan.Len(),
		Gain:   plan.Gain,
		Found:  true,
	})
	return plan, nil
}

func (e *Engine) notifySelected(ctx context.Context, ev *domain.PlanEvent) {
	if e.hooks.OnPlanSelected == nil {
		return
	}
	ev.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlanSelected}
	e.hooks.OnPlanSelected(ctx, ev)
}
