package lookahead

import (
	"context"
	"log/slog"

	"github.com/aretw0/lookahead/internal/logging"
	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
	"github.com/aretw0/lookahead/pkg/runner"
)

// Planner is the high-level entry point for the lookahead library.
// It wraps the internal search engine and a selection policy.
type Planner struct {
	engine   *runtime.Engine
	selector runtime.Selector
	logger   *slog.Logger
	hooks    domain.LifecycleHooks

	maxDepth int
	guard    string
	workers  int
	policy   string
	goal     domain.Goal
}

// Option defines a functional option for configuring the Planner.
type Option func(*Planner)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) {
		p.hooks = hooks
	}
}

// WithMaxDepth sets how many actions ahead the planner looks (default 5).
func WithMaxDepth(depth int) Option {
	return func(p *Planner) {
		p.maxDepth = depth
	}
}

// WithGuard selects the repetition guard: "name" (default) or "key".
func WithGuard(guard string) Option {
	return func(p *Planner) {
		p.guard = guard
	}
}

// WithWorkers bounds the goroutines expanding one level of the tree.
func WithWorkers(n int) Option {
	return func(p *Planner) {
		p.workers = n
	}
}

// WithPolicy selects the plan selection policy by name. goal is required by
// the "goal" policy and ignored by the others.
func WithPolicy(policy string, goal domain.Goal) Option {
	return func(p *Planner) {
		p.policy = policy
		p.goal = goal
	}
}

// New creates a planner. Without options it looks five actions ahead and
// selects the path with the highest gain.
func New(opts ...Option) (*Planner, error) {
	p := &Planner{
		maxDepth: runtime.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}

	guard, err := runtime.ParseGuard(p.guard)
	if err != nil {
		return nil, err
	}
	sel, err := runtime.SelectorFor(p.policy, p.goal)
	if err != nil {
		return nil, err
	}
	p.selector = sel

	p.engine = runtime.NewEngine(
		runtime.WithMaxDepth(p.maxDepth),
		runtime.WithGuard(guard),
		runtime.WithWorkers(p.workers),
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
	)
	return p, nil
}

// Policy returns the name of the selection policy in use.
func (p *Planner) Policy() string {
	return p.selector.Name()
}

// MaxDepth returns the lookahead depth.
func (p *Planner) MaxDepth() int {
	return p.engine.MaxDepth()
}

// Plan explores the actions reachable from root and returns the selected plan.
// An empty plan means nothing beats standing still; domain.ErrNoPlan means
// the policy found no acceptable path.
func (p *Planner) Plan(ctx context.Context, root domain.State, gen ports.ActionGenerator) (*domain.Plan, error) {
	plan, _, err := p.engine.Plan(ctx, root, gen, p.selector)
	return plan, err
}

// Explore is Plan that also returns the tree, for inspection or rendering.
// The tree is returned even when no plan is selected.
func (p *Planner) Explore(ctx context.Context, root domain.State, gen ports.ActionGenerator) (*domain.Plan, *runtime.Tree, error) {
	return p.engine.Plan(ctx, root, gen, p.selector)
}

// NewRunner creates a runner that executes this planner's plans for one
// agent of world. Options are applied after the planner's own.
func (p *Planner) NewRunner(agentID string, world ports.World, gen ports.ActionGenerator, opts ...runner.Option) *runner.Runner {
	base := []runner.Option{
		runner.WithEngine(p.engine),
		runner.WithSelector(p.selector),
		runner.WithLogger(p.logger),
		runner.WithLifecycleHooks(p.hooks),
	}
	return runner.NewRunner(agentID, world, gen, append(base, opts...)...)
}
