package ports

import (
	"context"

	"github.com/aretw0/lookahead/pkg/domain"
)

// World is the authoritative domain state provider.
//
// The engine reads a private snapshot at build time and the executor writes
// back through Apply. Version changes whenever an external resource the plans
// depend on changes (prices, capacities); it does not change when an agent
// applies its own step. Callers must not overlap Apply and a build for the
// same agent.
type World interface {
	// Snapshot returns a private copy of the agent's current state.
	// Returns domain.ErrAgentNotFound for an unknown agent.
	Snapshot(ctx context.Context, agentID string) (domain.State, error)

	// Apply executes an action against the agent's live state.
	// Returns domain.ErrActionNotApplicable if the live state rejects it.
	Apply(ctx context.Context, agentID string, action domain.Action) error

	// Version identifies the current revision of the shared resources.
	Version() uint64
}
