package domain

// NodeID indexes a node inside the arena of the tree that created it.
type NodeID int

// NoParent is the parent index of a root node.
const NoParent NodeID = -1

// Node is one reachable state in a planning tree.
//
// Nodes are owned by their tree and are never modified after construction,
// except for the Children list which the tree extends while expanding the
// next level. Parent and Children are indices into the same tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Depth    int

	// Action produced this node from its parent. Nil for a root.
	Action Action

	// State is the snapshot after Action was applied.
	State State

	// PathActions lists the actions from the root to this node.
	PathActions []Action

	// CumulativeCost sums the cost of every action on the path.
	CumulativeCost float64

	// GainTrajectory holds the cumulative gain at each depth along the path,
	// starting with the root baseline of zero. Gain is the negated cost.
	GainTrajectory []float64

	// DepthTrajectory holds the depth index matching each gain entry.
	DepthTrajectory []int
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent == NoParent
}

// Gain returns the last entry of the gain trajectory.
func (n *Node) Gain() float64 {
	if len(n.GainTrajectory) == 0 {
		return 0
	}
	return n.GainTrajectory[len(n.GainTrajectory)-1]
}

// Edge is a (parent, child, label) triple used by renderers.
type Edge struct {
	Parent NodeID `json:"parent"`
	Child  NodeID `json:"child"`
	Label  string `json:"label"`
}
