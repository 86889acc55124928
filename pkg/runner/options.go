package runner

import (
	"log/slog"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the planning engine.
func WithEngine(engine *runtime.Engine) Option {
	return func(r *Runner) {
		r.Engine = engine
	}
}

// WithSelector configures the plan selection policy.
func WithSelector(sel runtime.Selector) Option {
	return func(r *Runner) {
		r.Selector = sel
	}
}

// WithStore configures the PlanStore for persistence.
func WithStore(store ports.PlanStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithResolver configures how persisted steps are turned back into actions.
// This is required for Resume to reuse a stored plan.
func WithResolver(resolver ports.ActionResolver) Option {
	return func(r *Runner) {
		r.Resolver = resolver
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithReporter configures where plan and step reports are written.
func WithReporter(reporter Reporter) Option {
	return func(r *Runner) {
		r.Reporter = reporter
	}
}

// WithLifecycleHooks registers step and invalidation hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithInterruptSource sets a channel that stops Run when closed or signalled.
func WithInterruptSource(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.InterruptSource = ch
	}
}
