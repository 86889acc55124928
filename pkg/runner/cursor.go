package runner

import (
	"fmt"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Cursor exposes an installed plan one action at a time.
// It is not safe for concurrent use; the Runner serializes access.
type Cursor struct {
	plan *domain.Plan
	pos  int
}

// Install replaces the current plan and rewinds to its first step.
func (c *Cursor) Install(p *domain.Plan) {
	c.plan = p
	c.pos = 0
}

// Restore installs a plan with some steps already executed.
func (c *Cursor) Restore(p *domain.Plan, position int) error {
	if position < 0 || position > p.Len() {
		return fmt.Errorf("position %d out of range for plan of %d steps", position, p.Len())
	}
	c.plan = p
	c.pos = position
	return nil
}

// Next returns the action at the current position and advances.
//
// It returns domain.ErrPlanExhausted once every step was handed out, and
// domain.ErrNoPlan when nothing is installed.
func (c *Cursor) Next() (domain.Action, error) {
	a, err := c.Peek()
	if err != nil {
		return nil, err
	}
	c.pos++
	return a, nil
}

// Peek returns the action Next would return, without advancing.
func (c Cursor) Peek() (domain.Action, error) {
	if c.plan == nil {
		return nil, domain.ErrNoPlan
	}
	if c.pos >= len(c.plan.Actions) {
		return nil, domain.ErrPlanExhausted
	}
	return c.plan.Actions[c.pos], nil
}

// Invalidate drops the installed plan.
func (c *Cursor) Invalidate() {
	c.plan = nil
	c.pos = 0
}

// Active reports whether a plan is installed, exhausted or not.
func (c Cursor) Active() bool {
	return c.plan != nil
}

// Position is the number of steps already handed out.
func (c Cursor) Position() int {
	return c.pos
}

// Remaining is the number of steps left.
func (c Cursor) Remaining() int {
	if c.plan == nil {
		return 0
	}
	return len(c.plan.Actions) - c.pos
}

// Plan returns the installed plan, or nil.
func (c Cursor) Plan() *domain.Plan {
	return c.plan
}
