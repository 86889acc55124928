package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lookahead/pkg/domain"
)

// GraphOverlay marks a selected path on the rendered tree.
type GraphOverlay struct {
	// Path lists the nodes from the root to the target, in order.
	Path []domain.NodeID
	// Target is the node the plan leads to.
	Target domain.NodeID
}

// NewOverlay builds the overlay for a plan path.
func NewOverlay(path []*domain.Node) *GraphOverlay {
	if len(path) == 0 {
		return nil
	}
	o := &GraphOverlay{Target: path[len(path)-1].ID}
	for _, n := range path {
		o.Path = append(o.Path, n.ID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of a planning tree.
// Node shapes:
// - Root: ((Circle))
// - Leaf (no children): (Rounded)
// - Default: [Rectangle]
// Edges are labelled with the action that produced the child. Edges on the
// overlay path are drawn thick, and the overlay nodes get visited/target styles.
func GenerateMermaid(nodes []*domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	onPath := make(map[domain.NodeID]bool)
	if overlay != nil {
		for _, id := range overlay.Path {
			onPath[id] = true
		}
	}

	for _, n := range nodes {
		opener, closer := "[", "]"
		switch {
		case n.IsRoot():
			opener, closer = "((", "))"
		case len(n.Children) == 0:
			opener, closer = "(", ")"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, nodeLabel(n), closer)
	}

	for _, n := range nodes {
		if n.IsRoot() {
			continue
		}
		arrow := "-->"
		if onPath[n.ID] && onPath[n.Parent] {
			arrow = "==>"
		}
		fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", mermaidID(n.Parent), arrow, escape(domain.Label(n.Action)), mermaidID(n.ID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range overlay.Path {
			if id == overlay.Target {
				continue
			}
			fmt.Fprintf(&sb, "    class %s visited;\n", mermaidID(id))
		}
		fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.Target))
	}

	return sb.String()
}

func nodeLabel(n *domain.Node) string {
	label := fmt.Sprintf("#%d gain %g", n.ID, n.Gain())
	if s, ok := n.State.(fmt.Stringer); ok {
		label += " <br/> " + escape(s.String())
	}
	return label
}

func mermaidID(id domain.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
