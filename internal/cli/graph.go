package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/lookahead/internal/presentation/graph"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/trade"
)

// RunGraph prints the lookahead tree of one merchant as a Mermaid flowchart
// with the selected plan highlighted, or as JSON edges with --format json.
// Without --agent the first merchant is used.
func RunGraph(ctx context.Context, opts Options) error {
	setup, err := Prepare(opts)
	if err != nil {
		return err
	}
	agents, err := setup.Agents(opts)
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		return errors.New("scenario has no merchants")
	}

	root, err := setup.World.Snapshot(ctx, agents[0])
	if err != nil {
		return err
	}
	plan, tree, err := setup.Engine.Plan(ctx, root, trade.Generator{}, setup.Selector)
	if tree == nil {
		return err
	}
	if err != nil && !errors.Is(err, domain.ErrNoPlan) {
		return err
	}

	if opts.Format == FormatJSON {
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(tree.Edges())
	}

	var overlay *graph.GraphOverlay
	if plan != nil {
		overlay = graph.NewOverlay(tree.Path(tree.Node(plan.Target)))
	}
	_, err = fmt.Fprint(opts.Out, graph.GenerateMermaid(tree.Nodes(), overlay))
	return err
}
