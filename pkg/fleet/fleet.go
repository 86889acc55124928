package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/session"
	"github.com/aretw0/lookahead/pkg/trade"
)

// PlanView is the transport-neutral shape of an agent's plan, shared by the
// HTTP and MCP adapters.
type PlanView struct {
	AgentID   string   `json:"agent_id" jsonschema_description:"The merchant the plan belongs to"`
	PlanID    string   `json:"plan_id,omitempty" jsonschema_description:"Identifier of the installed plan"`
	Policy    string   `json:"policy,omitempty" jsonschema_description:"Selection policy that produced the plan"`
	Steps     []string `json:"steps" jsonschema_description:"Action labels in execution order"`
	Position  int      `json:"position" jsonschema_description:"Number of steps already executed"`
	Remaining int      `json:"remaining" jsonschema_description:"Number of steps left"`
	Gain      float64  `json:"gain" jsonschema_description:"Expected gain of the whole plan"`
	Cost      float64  `json:"cost" jsonschema_description:"Expected cost of the whole plan"`
}

// NewPlanView describes a cursor for agentID.
func NewPlanView(agentID string, c runner.Cursor) PlanView {
	v := PlanView{AgentID: agentID, Steps: []string{}}
	p := c.Plan()
	if p == nil {
		return v
	}
	v.PlanID = p.ID
	v.Policy = p.Policy
	v.Gain = p.Gain
	v.Cost = p.Cost
	v.Position = c.Position()
	v.Remaining = c.Remaining()
	for _, a := range p.Actions {
		v.Steps = append(v.Steps, domain.Label(a))
	}
	return v
}

// MerchantView is the public shape of a merchant's resources.
type MerchantView struct {
	ID       string           `json:"id"`
	Location string           `json:"location"`
	Money    int64            `json:"money"`
	Stock    map[string]int64 `json:"stock"`
	Capacity map[string]int64 `json:"capacity"`
}

// Fleet keeps one runner per merchant of a shared trade world. Every mutating
// operation on an agent runs under the session manager's lock for that agent.
type Fleet struct {
	World    *trade.World
	Sessions *session.Manager

	engine   *runtime.Engine
	selector runtime.Selector
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	reporter runner.Reporter

	mu      sync.Mutex
	runners map[string]*runner.Runner
}

// Option configures a Fleet.
type Option func(*Fleet)

// WithEngine sets the engine shared by every runner.
func WithEngine(engine *runtime.Engine) Option {
	return func(f *Fleet) {
		f.engine = engine
	}
}

// WithSelector sets the policy used by every runner.
func WithSelector(sel runtime.Selector) Option {
	return func(f *Fleet) {
		f.selector = sel
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fleet) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithLifecycleHooks registers step and invalidation hooks on every runner.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Fleet) {
		f.hooks = hooks
	}
}

// WithReporter attaches a reporter to every runner.
func WithReporter(reporter runner.Reporter) Option {
	return func(f *Fleet) {
		f.reporter = reporter
	}
}

// New creates a fleet over world. Plans are persisted through sessions.
func New(world *trade.World, sessions *session.Manager, opts ...Option) *Fleet {
	f := &Fleet{
		World:    world,
		Sessions: sessions,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runners:  make(map[string]*runner.Runner),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.engine == nil {
		f.engine = runtime.NewEngine(runtime.WithLogger(f.logger))
	}
	if f.selector == nil {
		f.selector = runtime.Greedy()
	}
	return f
}

// Agents lists the merchants of the world.
func (f *Fleet) Agents() []string {
	return f.World.Merchants()
}

// Merchant returns the live resources of an agent.
func (f *Fleet) Merchant(agentID string) (MerchantView, error) {
	st, err := f.World.Merchant(agentID)
	if err != nil {
		return MerchantView{}, err
	}
	return MerchantView{
		ID:       agentID,
		Location: st.Location,
		Money:    st.Money,
		Stock:    st.Stock,
		Capacity: st.Capacity,
	}, nil
}

// Plan returns the agent's current plan, resuming or building one when none
// is installed yet.
func (f *Fleet) Plan(ctx context.Context, agentID string) (PlanView, error) {
	r, err := f.runner(ctx, agentID)
	if err != nil {
		return PlanView{}, err
	}
	return NewPlanView(agentID, r.Cursor()), nil
}

// Replan discards the agent's plan and builds a new one.
func (f *Fleet) Replan(ctx context.Context, agentID string) (PlanView, error) {
	r, err := f.runner(ctx, agentID)
	if err != nil {
		return PlanView{}, err
	}
	err = f.Sessions.WithLock(ctx, agentID, func(ctx context.Context) error {
		_, err := r.Replan(ctx)
		return err
	})
	if err != nil {
		return PlanView{}, err
	}
	return NewPlanView(agentID, r.Cursor()), nil
}

// Step executes the agent's next action and reports how its resources moved.
// An exhausted plan is replaced once; domain.ErrPlanExhausted is returned when
// the replacement is empty too.
func (f *Fleet) Step(ctx context.Context, agentID string) (*runner.StepResult, *trade.StateDiff, error) {
	r, err := f.runner(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}

	var (
		res  *runner.StepResult
		diff *trade.StateDiff
	)
	err = f.Sessions.WithLock(ctx, agentID, func(ctx context.Context) error {
		before, err := f.World.Merchant(agentID)
		if err != nil {
			return err
		}
		res, err = r.Step(ctx)
		if errors.Is(err, domain.ErrPlanExhausted) {
			if _, err := r.Replan(ctx); err != nil {
				return err
			}
			res, err = r.Step(ctx)
		}
		if err != nil {
			return err
		}
		after, err := f.World.Merchant(agentID)
		if err != nil {
			return err
		}
		diff = trade.Diff(before, after)
		return nil
	})
	return res, diff, err
}

// Tree builds a fresh planning tree from the agent's live state without
// touching its installed plan. The returned plan is the one the fleet's
// policy would select.
func (f *Fleet) Tree(ctx context.Context, agentID string) (*runtime.Tree, *domain.Plan, error) {
	root, err := f.World.Snapshot(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}
	plan, tree, err := f.engine.Plan(ctx, root, trade.Generator{}, f.selector)
	if tree == nil {
		return nil, nil, err
	}
	// A tree without a satisfying node is still worth returning.
	return tree, plan, err
}

// SetPrices updates a quote. Every agent replans on its next step.
func (f *Fleet) SetPrices(station, good string, sellPrice, buyPrice int64) error {
	if err := f.World.SetPrices(station, good, sellPrice, buyPrice); err != nil {
		return err
	}
	f.logger.Debug("replanning on next step",
		"station", station,
		"good", good,
		"version", f.World.Version(),
	)
	return nil
}

// runner returns the agent's runner, creating it and resuming its stored
// plan on first use.
func (f *Fleet) runner(ctx context.Context, agentID string) (*runner.Runner, error) {
	if _, err := f.World.Merchant(agentID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	r, ok := f.runners[agentID]
	if !ok {
		r = runner.NewRunner(agentID, f.World, trade.Generator{},
			runner.WithEngine(f.engine),
			runner.WithSelector(f.selector),
			runner.WithStore(f.Sessions.Store()),
			runner.WithResolver(trade.Resolver{}),
			runner.WithLogger(f.logger),
			runner.WithLifecycleHooks(f.hooks),
		)
		if f.reporter != nil {
			r.Reporter = f.reporter
		}
		f.runners[agentID] = r
	}
	f.mu.Unlock()

	if ok && r.Cursor().Active() {
		return r, nil
	}

	err := f.Sessions.WithLock(ctx, agentID, func(ctx context.Context) error {
		if r.Cursor().Active() {
			return nil
		}
		_, err := r.Resume(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot prepare plan for %s: %w", agentID, err)
	}
	return r, nil
}
