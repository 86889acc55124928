package ports

import (
	"context"

	"github.com/aretw0/lookahead/pkg/domain"
)

// PlanStore defines the interface for persisting an agent's plan and cursor.
type PlanStore interface {
	// Save persists the record for a given agent ID, replacing any previous one.
	Save(ctx context.Context, agentID string, record *domain.PlanRecord) error

	// Load retrieves the record for a given agent ID.
	// Returns domain.ErrPlanNotFound if the agent has no stored plan.
	Load(ctx context.Context, agentID string) (*domain.PlanRecord, error)

	// Delete removes the record for a given agent ID.
	Delete(ctx context.Context, agentID string) error

	// List returns the IDs of agents with a stored plan.
	List(ctx context.Context) ([]string, error)
}
