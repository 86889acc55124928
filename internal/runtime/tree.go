package runtime

import "github.com/aretw0/lookahead/pkg/domain"

// Tree is the arena of nodes produced by one build.
//
// Nodes are stored in registration order (the flat registry) and grouped by
// depth (the levels). Parent and child relations are indices into the arena,
// so the tree holds no reference cycles.
type Tree struct {
	nodes  []*domain.Node
	levels [][]domain.NodeID
}

func newTree(root domain.State) *Tree {
	t := &Tree{}
	t.register(&domain.Node{
		Parent:          domain.NoParent,
		State:           root.Clone(),
		GainTrajectory:  []float64{0},
		DepthTrajectory: []int{0},
	})
	return t
}

// register assigns the node its ID and records it in the registry, its level
// and its parent's children.
func (t *Tree) register(n *domain.Node) {
	n.ID = domain.NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)

	for len(t.levels) <= n.Depth {
		t.levels = append(t.levels, nil)
	}
	t.levels[n.Depth] = append(t.levels[n.Depth], n.ID)

	if n.Parent != domain.NoParent {
		parent := t.nodes[n.Parent]
		parent.Children = append(parent.Children, n.ID)
	}
}

// Root returns the node built from the initial state.
func (t *Tree) Root() *domain.Node {
	return t.nodes[0]
}

// Node returns the node with the given ID, or nil if it does not exist.
func (t *Tree) Node(id domain.NodeID) *domain.Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns every node in registration order.
func (t *Tree) Nodes() []*domain.Node {
	out := make([]*domain.Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Depth returns the depth of the deepest level.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Levels returns the number of levels, root level included.
func (t *Tree) Levels() int {
	return len(t.levels)
}

// Level returns the nodes at depth d in breadth-first order.
func (t *Tree) Level(d int) []*domain.Node {
	if d < 0 || d >= len(t.levels) {
		return nil
	}
	ids := t.levels[d]
	out := make([]*domain.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}

// LastLevel returns the deepest level built.
func (t *Tree) LastLevel() []*domain.Node {
	return t.Level(len(t.levels) - 1)
}

// Children returns the direct children of a node.
func (t *Tree) Children(n *domain.Node) []*domain.Node {
	out := make([]*domain.Node, 0, len(n.Children))
	for _, id := range n.Children {
		out = append(out, t.nodes[id])
	}
	return out
}

// Path returns the nodes from the root down to n, both included.
func (t *Tree) Path(n *domain.Node) []*domain.Node {
	path := make([]*domain.Node, 0, n.Depth+1)
	for cur := n; cur != nil; cur = t.Node(cur.Parent) {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Edges returns one (parent, child, label) triple per non-root node, in
// registration order.
func (t *Tree) Edges() []domain.Edge {
	edges := make([]domain.Edge, 0, len(t.nodes)-1)
	for _, n := range t.nodes[1:] {
		edges = append(edges, domain.Edge{
			Parent: n.Parent,
			Child:  n.ID,
			Label:  domain.Label(n.Action),
		})
	}
	return edges
}
