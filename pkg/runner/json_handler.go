package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aretw0/lookahead/pkg/domain"
)

// JSONReporter writes one JSON object per line.
type JSONReporter struct {
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONReporter creates a reporter for JSON-Lines output.
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// PlanReport is the JSON form of an installed plan.
type PlanReport struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	AgentID   string            `json:"agent_id"`
	PlanID    string            `json:"plan_id"`
	Policy    string            `json:"policy"`
	Reason    string            `json:"reason"`
	Gain      float64           `json:"gain"`
	Cost      float64           `json:"cost"`
	Steps     []domain.PlanStep `json:"steps"`
}

// StepReport is the JSON form of an executed step.
type StepReport struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	*StepResult
}

func (h *JSONReporter) PlanInstalled(ctx context.Context, agentID string, plan *domain.Plan, reason string) error {
	steps := plan.Steps()
	if steps == nil {
		steps = []domain.PlanStep{}
	}
	return h.encode(PlanReport{
		Type:      "plan",
		Timestamp: time.Now(),
		AgentID:   agentID,
		PlanID:    plan.ID,
		Policy:    plan.Policy,
		Reason:    reason,
		Gain:      plan.Gain,
		Cost:      plan.Cost,
		Steps:     steps,
	})
}

func (h *JSONReporter) StepTaken(ctx context.Context, res *StepResult) error {
	return h.encode(StepReport{
		Type:       "step",
		Timestamp:  time.Now(),
		StepResult: res,
	})
}

func (h *JSONReporter) encode(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(v)
}
