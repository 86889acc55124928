package runner

import (
	"context"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Reporter defines how a Runner presents its progress.
// This allows switching between Text (CLI/TUI) and JSON (structured) output.
type Reporter interface {
	// PlanInstalled is called each time a new plan replaces the current one.
	PlanInstalled(ctx context.Context, agentID string, plan *domain.Plan, reason string) error

	// StepTaken is called after the world accepted a step.
	StepTaken(ctx context.Context, res *StepResult) error
}
