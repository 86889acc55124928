package runtime

import (
	"fmt"
	"math"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Selector picks the target node of a plan from a built tree.
type Selector interface {
	Name() string
	Select(t *Tree) (*domain.Node, error)
}

// SelectorFor maps a policy name to its selector. The goal is only used by
// the goal policy, which requires it.
func SelectorFor(policy string, goal domain.Goal) (Selector, error) {
	switch policy {
	case "", domain.PolicyGreedy:
		return Greedy(), nil
	case domain.PolicyFinalLevel:
		return FinalLevel(), nil
	case domain.PolicyTrend:
		return Trend(), nil
	case domain.PolicyGoal:
		if goal == nil {
			return nil, fmt.Errorf("policy %q requires a goal", policy)
		}
		return GoalSelector(goal), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPolicy, policy)
}

type greedy struct{}

// Greedy scans every level and picks the node with the highest gain above
// zero. When nothing beats zero the root is selected, giving an empty plan.
func Greedy() Selector { return greedy{} }

func (greedy) Name() string { return domain.PolicyGreedy }

func (greedy) Select(t *Tree) (*domain.Node, error) {
	if best, ok := BestByGain(t.nodes, 0); ok {
		return best, nil
	}
	return t.Root(), nil
}

type finalLevel struct{}

// FinalLevel picks the highest gain among the deepest level only.
func FinalLevel() Selector { return finalLevel{} }

func (finalLevel) Name() string { return domain.PolicyFinalLevel }

func (finalLevel) Select(t *Tree) (*domain.Node, error) {
	if best, ok := BestByGain(t.LastLevel(), -math.MaxFloat64); ok {
		return best, nil
	}
	return t.Root(), nil
}

type trend struct{}

// Trend picks the node of the deepest level whose gain grows fastest with
// depth, preferring a steady rate over a single windfall.
//
// The fit starts after the root, so with a one-step horizon every path has
// a slope of 0 and Trend returns the first candidate the generator produced,
// whatever its gain. Use a depth of at least 2 with this policy.
func Trend() Selector { return trend{} }

func (trend) Name() string { return domain.PolicyTrend }

func (trend) Select(t *Tree) (*domain.Node, error) {
	return BestByTrend(t.LastLevel()), nil
}

type goalSelector struct {
	goal domain.Goal
}

// GoalSelector picks, among all nodes whose state satisfies goal relative to
// the root state, the one with the lowest cumulative cost. It reports
// domain.ErrNoPlan when no node satisfies the goal; a satisfied root yields
// an empty plan instead.
func GoalSelector(goal domain.Goal) Selector { return goalSelector{goal: goal} }

func (goalSelector) Name() string { return domain.PolicyGoal }

func (g goalSelector) Select(t *Tree) (*domain.Node, error) {
	initial := t.Root().State

	var best *domain.Node
	for _, n := range t.nodes {
		if !g.goal.Check(initial, n.State) {
			continue
		}
		if best == nil || n.CumulativeCost < best.CumulativeCost {
			best = n
		}
	}
	if best == nil {
		return nil, domain.ErrNoPlan
	}
	return best, nil
}

// BestByGain returns the first node with the strictly highest final gain
// above baseline. ok is false when no node exceeds the baseline.
func BestByGain(nodes []*domain.Node, baseline float64) (best *domain.Node, ok bool) {
	top := baseline
	for _, n := range nodes {
		if g := n.Gain(); g > top {
			top = g
			best = n
		}
	}
	return best, best != nil
}

// BestByTrend returns the first node with the steepest gain slope.
//
// The shared root baseline is left out of the fit: a path of a single step
// has one sample and therefore no trend, however large that step was.
func BestByTrend(nodes []*domain.Node) *domain.Node {
	var best *domain.Node
	top := math.Inf(-1)
	for _, n := range nodes {
		s := trendOf(n)
		if s > top {
			top = s
			best = n
		}
	}
	return best
}

func trendOf(n *domain.Node) float64 {
	if len(n.GainTrajectory) < 2 {
		return 0
	}
	return Slope(n.GainTrajectory[1:], n.DepthTrajectory[1:])
}
