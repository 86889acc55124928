package ports

import "github.com/aretw0/lookahead/pkg/domain"

// ActionGenerator enumerates the candidate actions for a state.
//
// The engine filters the result through Action.Applicable and the repetition
// guard, so a generator may return candidates that turn out not to apply.
// The returned order must be deterministic: selection policies break ties by
// first-encountered node. Generators may be called from several goroutines
// when parallel expansion is enabled and must not mutate the state.
type ActionGenerator interface {
	Candidates(s domain.State) []domain.Action
}

// GeneratorFunc adapts a plain function to the ActionGenerator interface.
type GeneratorFunc func(s domain.State) []domain.Action

// Candidates calls f(s).
func (f GeneratorFunc) Candidates(s domain.State) []domain.Action {
	return f(s)
}

// ActionResolver rebuilds an Action from its persisted form.
// Returns domain.ErrUnknownAction if the step names no known action.
type ActionResolver interface {
	Resolve(step domain.PlanStep) (domain.Action, error)
}
