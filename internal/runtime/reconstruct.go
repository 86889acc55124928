package runtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Reconstruct walks parent links from n to the root and returns the actions
// in root-to-node order. Selecting the root yields an empty plan.
func Reconstruct(t *Tree, n *domain.Node, policy string) *domain.Plan {
	var actions []domain.Action
	for cur := n; cur != nil && !cur.IsRoot(); cur = t.Node(cur.Parent) {
		actions = append(actions, cur.Action)
	}
	for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
		actions[i], actions[j] = actions[j], actions[i]
	}

	return &domain.Plan{
		ID:        uuid.NewString(),
		Policy:    policy,
		Actions:   actions,
		Target:    n.ID,
		Cost:      n.CumulativeCost,
		Gain:      n.Gain(),
		CreatedAt: time.Now(),
	}
}
