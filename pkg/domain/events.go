package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBuildStart   EventType = "build_start"
	EventBuildDone    EventType = "build_done"
	EventPlanSelected EventType = "plan_selected"
	EventStep         EventType = "step"
	EventInvalidate   EventType = "invalidate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// BuildEvent describes a tree construction.
type BuildEvent struct {
	EventBase
	MaxDepth int           `json:"max_depth"`
	Nodes    int           `json:"nodes,omitempty"`
	Levels   int           `json:"levels,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// PlanEvent describes the outcome of a selection.
type PlanEvent struct {
	EventBase
	PlanID string  `json:"plan_id,omitempty"`
	Policy string  `json:"policy"`
	Steps  int     `json:"steps"`
	Gain   float64 `json:"gain"`
	Found  bool    `json:"found"`
}

// StepEvent describes an executed step or a plan invalidation.
type StepEvent struct {
	EventBase
	AgentID  string `json:"agent_id"`
	PlanID   string `json:"plan_id,omitempty"`
	Action   string `json:"action,omitempty"`
	Position int    `json:"position"`
	Reason   string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for planner observability.
type LifecycleHooks struct {
	OnBuildStart   func(context.Context, *BuildEvent)
	OnBuildDone    func(context.Context, *BuildEvent)
	OnPlanSelected func(context.Context, *PlanEvent)
	OnStep         func(context.Context, *StepEvent)
	OnInvalidate   func(context.Context, *StepEvent)
}
