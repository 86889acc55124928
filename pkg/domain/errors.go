package domain

import "errors"

// ErrNoPlan is returned when no plan was ever produced, or when a goal
// cannot be satisfied by any node of the tree.
var ErrNoPlan = errors.New("no plan")

// ErrPlanExhausted signals that every step of the installed plan was handed out.
// It is a normal terminal condition, not a failure.
var ErrPlanExhausted = errors.New("plan exhausted")

// ErrActionNotApplicable is returned when a live state rejects an action.
var ErrActionNotApplicable = errors.New("action not applicable")

// ErrAgentNotFound is returned when a world has no agent with the given ID.
var ErrAgentNotFound = errors.New("agent not found")

// ErrPlanNotFound is returned when a store holds no plan for an agent.
var ErrPlanNotFound = errors.New("plan not found")

// ErrInvalidDepth is returned for a negative search horizon.
var ErrInvalidDepth = errors.New("invalid max depth")

// ErrUnknownAction is returned when a persisted step names no known action.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownPolicy is returned for an unrecognized selection policy name.
var ErrUnknownPolicy = errors.New("unknown selection policy")
