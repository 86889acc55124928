package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// Reasons for installing a new plan.
const (
	ReasonInitial      = "initial"
	ReasonWorldChanged = "world_changed"
	ReasonExhausted    = "exhausted"
	ReasonManual       = "manual"
	ReasonResumed      = "resumed"
)

// ErrInterrupted is returned by Run when the interrupt source fires.
var ErrInterrupted = errors.New("run interrupted")

// StepResult describes one executed step.
type StepResult struct {
	AgentID   string        `json:"agent_id"`
	PlanID    string        `json:"plan_id"`
	Action    domain.Action `json:"-"`
	Label     string        `json:"action"`
	Position  int           `json:"position"`
	Remaining int           `json:"remaining"`

	// Replanned is set when a new plan was installed right before this step.
	Replanned bool   `json:"replanned,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Runner drives the plan of a single agent against a live world.
// Step, Replan, Resume and Run are serialized, so a step never overlaps a
// rebuild. Other agents need their own Runner.
type Runner struct {
	AgentID   string
	World     ports.World
	Generator ports.ActionGenerator

	// Engine builds the trees. If nil, a default engine is used.
	Engine *runtime.Engine

	// Selector picks the plan. If nil, the greedy policy is used.
	Selector runtime.Selector

	// Store is the persistence adapter for the plan and cursor.
	// If nil, plans live only in memory.
	Store ports.PlanStore

	// Resolver rebuilds stored steps on Resume.
	Resolver ports.ActionResolver

	// Reporter receives plan and step reports. Optional.
	Reporter Reporter

	// Logger is used for internal logging. Defaults to a no-op logger.
	Logger *slog.Logger

	Hooks domain.LifecycleHooks

	// InterruptSource stops Run between steps.
	InterruptSource <-chan struct{}

	mu      sync.Mutex
	cursor  Cursor
	version uint64
}

// NewRunner creates a Runner for one agent.
func NewRunner(agentID string, world ports.World, gen ports.ActionGenerator, opts ...Option) *Runner {
	r := &Runner{
		AgentID:   agentID,
		World:     world,
		Generator: gen,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Engine == nil {
		r.Engine = runtime.NewEngine(runtime.WithLogger(r.Logger))
	}
	if r.Selector == nil {
		r.Selector = runtime.Greedy()
	}
	return r
}

// Replan discards the current plan and builds a new one from the live state.
func (r *Runner) Replan(ctx context.Context) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replan(ctx, ReasonManual)
}

// Step executes the next action of the plan.
//
// A plan is built first when none is installed or when the world version
// moved since the plan was built. It returns domain.ErrPlanExhausted once
// the plan is done, and domain.ErrNoPlan when no plan could be produced.
// An action rejected by the world drops the plan, so the next Step rebuilds.
func (r *Runner) Step(ctx context.Context) (*StepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &StepResult{AgentID: r.AgentID}

	if reason, stale := r.staleReason(); stale {
		if reason == ReasonWorldChanged {
			r.invalidate(ctx)
		}
		if _, err := r.replan(ctx, reason); err != nil {
			return nil, err
		}
		res.Replanned = true
		res.Reason = reason
	}

	action, err := r.cursor.Next()
	if err != nil {
		return nil, err
	}
	plan := r.cursor.Plan()

	if err := r.World.Apply(ctx, r.AgentID, action); err != nil {
		r.cursor.Invalidate()
		return nil, fmt.Errorf("step %d of plan %s: %w", r.cursor.Position(), plan.ID, err)
	}

	res.PlanID = plan.ID
	res.Action = action
	res.Label = domain.Label(action)
	res.Position = r.cursor.Position()
	res.Remaining = r.cursor.Remaining()

	r.Logger.Info("step executed",
		"agent", r.AgentID,
		"action", res.Label,
		"position", res.Position,
		"plan_id", plan.ID,
	)

	if err := r.persist(ctx); err != nil {
		return res, err
	}

	if r.Hooks.OnStep != nil {
		r.Hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
			AgentID:   r.AgentID,
			PlanID:    plan.ID,
			Action:    res.Label,
			Position:  res.Position,
			Reason:    res.Reason,
		})
	}
	if r.Reporter != nil {
		if err := r.Reporter.StepTaken(ctx, res); err != nil {
			return res, fmt.Errorf("report error: %w", err)
		}
	}
	return res, nil
}

// Run steps until maxSteps actions were executed (no limit when maxSteps <= 0),
// the context is cancelled, or the interrupt source fires.
//
// Each time a plan runs out a new one is built; Run returns normally once the
// new plan is empty or no plan can be produced.
func (r *Runner) Run(ctx context.Context, maxSteps int) (int, error) {
	steps := 0
	for maxSteps <= 0 || steps < maxSteps {
		select {
		case <-ctx.Done():
			return steps, ctx.Err()
		case <-r.InterruptSource:
			return steps, ErrInterrupted
		default:
		}

		_, err := r.Step(ctx)
		switch {
		case err == nil:
			steps++
		case errors.Is(err, domain.ErrNoPlan):
			return steps, nil
		case errors.Is(err, domain.ErrPlanExhausted):
			plan, err := r.replanWithLock(ctx, ReasonExhausted)
			if errors.Is(err, domain.ErrNoPlan) {
				return steps, nil
			}
			if err != nil {
				return steps, err
			}
			if plan.Len() == 0 {
				return steps, nil
			}
		default:
			return steps, err
		}
	}
	return steps, nil
}

// Resume installs the stored plan at its stored position when it was built
// against the current world version, and builds a fresh plan otherwise.
func (r *Runner) Resume(ctx context.Context) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Store == nil {
		return r.replan(ctx, ReasonInitial)
	}

	rec, err := r.Store.Load(ctx, r.AgentID)
	if errors.Is(err, domain.ErrPlanNotFound) {
		return r.replan(ctx, ReasonInitial)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for %s: %w", r.AgentID, err)
	}

	if current := r.World.Version(); rec.WorldVersion != current {
		r.Logger.Info("stored plan is stale",
			"agent", r.AgentID,
			"plan_id", rec.PlanID,
			"stored_version", rec.WorldVersion,
			"world_version", current,
		)
		return r.replan(ctx, ReasonWorldChanged)
	}
	if r.Resolver == nil {
		return nil, fmt.Errorf("cannot resume plan %s: no action resolver configured", rec.PlanID)
	}

	plan := &domain.Plan{
		ID:        rec.PlanID,
		Policy:    rec.Policy,
		Actions:   make([]domain.Action, 0, len(rec.Steps)),
		Cost:      rec.Cost,
		Gain:      rec.Gain,
		CreatedAt: rec.CreatedAt,
	}
	for i, step := range rec.Steps {
		a, err := r.Resolver.Resolve(step)
		if err != nil {
			return nil, fmt.Errorf("cannot resume plan %s at step %d: %w", rec.PlanID, i, err)
		}
		plan.Actions = append(plan.Actions, a)
	}
	if err := r.cursor.Restore(plan, rec.Position); err != nil {
		return nil, fmt.Errorf("cannot resume plan %s: %w", rec.PlanID, err)
	}
	r.version = rec.WorldVersion

	r.Logger.Info("plan resumed",
		"agent", r.AgentID,
		"plan_id", plan.ID,
		"position", rec.Position,
		"steps", plan.Len(),
	)
	if r.Reporter != nil {
		if err := r.Reporter.PlanInstalled(ctx, r.AgentID, plan, ReasonResumed); err != nil {
			return plan, fmt.Errorf("report error: %w", err)
		}
	}
	return plan, nil
}

// Cursor returns a copy of the current cursor.
func (r *Runner) Cursor() Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

func (r *Runner) staleReason() (string, bool) {
	if !r.cursor.Active() {
		return ReasonInitial, true
	}
	if r.World.Version() != r.version {
		return ReasonWorldChanged, true
	}
	return "", false
}

func (r *Runner) invalidate(ctx context.Context) {
	plan := r.cursor.Plan()
	r.Logger.Info("plan invalidated",
		"agent", r.AgentID,
		"plan_id", plan.ID,
		"position", r.cursor.Position(),
		"built_at_version", r.version,
		"world_version", r.World.Version(),
	)
	if r.Hooks.OnInvalidate != nil {
		r.Hooks.OnInvalidate(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventInvalidate},
			AgentID:   r.AgentID,
			PlanID:    plan.ID,
			Position:  r.cursor.Position(),
			Reason:    ReasonWorldChanged,
		})
	}
	r.cursor.Invalidate()
}

func (r *Runner) replanWithLock(ctx context.Context, reason string) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replan(ctx, reason)
}

func (r *Runner) replan(ctx context.Context, reason string) (*domain.Plan, error) {
	version := r.World.Version()
	root, err := r.World.Snapshot(ctx, r.AgentID)
	if err != nil {
		return nil, err
	}

	plan, _, err := r.Engine.Plan(ctx, root, r.Generator, r.Selector)
	r.version = version
	if err != nil {
		r.cursor.Invalidate()
		if errors.Is(err, domain.ErrNoPlan) && r.Store != nil {
			if derr := r.Store.Delete(ctx, r.AgentID); derr != nil {
				r.Logger.Warn("failed to drop stored plan", "agent", r.AgentID, "err", derr)
			}
		}
		return nil, err
	}

	r.cursor.Install(plan)
	r.Logger.Info("plan installed",
		"agent", r.AgentID,
		"plan_id", plan.ID,
		"steps", plan.Len(),
		"gain", plan.Gain,
		"reason", reason,
	)

	if err := r.persist(ctx); err != nil {
		return plan, err
	}
	if r.Reporter != nil {
		if err := r.Reporter.PlanInstalled(ctx, r.AgentID, plan, reason); err != nil {
			return plan, fmt.Errorf("report error: %w", err)
		}
	}
	return plan, nil
}

func (r *Runner) persist(ctx context.Context) error {
	if r.Store == nil {
		return nil
	}
	rec := domain.NewPlanRecord(r.AgentID, r.cursor.Plan(), r.cursor.Position(), r.version)
	if err := r.Store.Save(ctx, r.AgentID, rec); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	r.Logger.Debug("plan saved", "agent", r.AgentID, "plan_id", rec.PlanID, "position", rec.Position)
	return nil
}
