package runtime

import (
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// derive builds the child reached by applying a to parent. It touches only
// fresh allocations, so it can run concurrently for different parents.
func derive(parent *domain.Node, a domain.Action) *domain.Node {
	working := parent.State.Clone()

	// Cost is charged against the state before the effect.
	cost := a.Cost(working)
	next := a.Apply(working)

	depth := parent.Depth + 1

	path := make([]domain.Action, len(parent.PathActions)+1)
	copy(path, parent.PathActions)
	path[len(path)-1] = a

	gains := make([]float64, depth+1)
	copy(gains, parent.GainTrajectory)
	gains[depth] = parent.Gain() - cost

	depths := make([]int, depth+1)
	copy(depths, parent.DepthTrajectory)
	depths[depth] = depth

	return &domain.Node{
		Parent:          parent.ID,
		Depth:           depth,
		Action:          a,
		State:           next,
		PathActions:     path,
		CumulativeCost:  parent.CumulativeCost + cost,
		GainTrajectory:  gains,
		DepthTrajectory: depths,
	}
}

// expandNode returns the children of a node in generator order.
func (e *Engine) expandNode(n *domain.Node, gen ports.ActionGenerator) []*domain.Node {
	var children []*domain.Node
	for _, a := range gen.Candidates(n.State) {
		if !e.guard.Allows(n.PathActions, a) {
			continue
		}
		if !a.Applicable(n.State) {
			continue
		}
		children = append(children, derive(n, a))
	}
	return children
}

// expandLevel computes the children of every frontier node. Results are
// gathered per parent and flattened in frontier order, so the next level is
// identical whether it was computed sequentially or in parallel.
func (e *Engine) expandLevel(frontier []*domain.Node, gen ports.ActionGenerator) []*domain.Node {
	perParent := make([][]*domain.Node, len(frontier))

	if e.workers <= 1 || len(frontier) == 1 {
		for i, n := range frontier {
			perParent[i] = e.expandNode(n, gen)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, n := range frontier {
			g.Go(func() error {
				perParent[i] = e.expandNode(n, gen)
				return nil
			})
		}
		_ = g.Wait()
	}

	total := 0
	for _, c := range perParent {
		total += len(c)
	}
	level := make([]*domain.Node, 0, total)
	for _, c := range perParent {
		level = append(level, c...)
	}
	return level
}
