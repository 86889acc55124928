package domain

import "time"

// Plan is an ordered sequence of actions from a root state to a selected node.
// The root contributes no action, so an empty plan means "stay put".
type Plan struct {
	ID        string
	Policy    string
	Actions   []Action
	Target    NodeID
	Cost      float64
	Gain      float64
	CreatedAt time.Time
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Actions)
}

// Steps converts the plan to its persisted representation.
func (p *Plan) Steps() []PlanStep {
	if p == nil {
		return nil
	}
	steps := make([]PlanStep, 0, len(p.Actions))
	for _, a := range p.Actions {
		steps = append(steps, PlanStep{Name: a.Name(), Params: a.Params()})
	}
	return steps
}

// PlanStep is a persisted action: its name and parameters.
type PlanStep struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// PlanRecord is the durable form of an agent's current plan and cursor.
type PlanRecord struct {
	PlanID       string     `json:"plan_id"`
	AgentID      string     `json:"agent_id"`
	Policy       string     `json:"policy,omitempty"`
	Steps        []PlanStep `json:"steps"`
	Position     int        `json:"position"`
	Gain         float64    `json:"gain"`
	Cost         float64    `json:"cost"`
	WorldVersion uint64     `json:"world_version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewPlanRecord captures a plan for persistence at the given cursor position.
func NewPlanRecord(agentID string, p *Plan, position int, worldVersion uint64) *PlanRecord {
	return &PlanRecord{
		PlanID:       p.ID,
		AgentID:      agentID,
		Policy:       p.Policy,
		Steps:        p.Steps(),
		Position:     position,
		Gain:         p.Gain,
		Cost:         p.Cost,
		WorldVersion: worldVersion,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    time.Now(),
	}
}

// Remaining returns the steps not yet executed.
func (r *PlanRecord) Remaining() []PlanStep {
	if r.Position >= len(r.Steps) {
		return nil
	}
	return r.Steps[r.Position:]
}
