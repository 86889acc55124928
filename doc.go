/*
Package lookahead is a forward state-space planner. From an agent's current
state it expands every applicable action level by level up to a fixed depth,
then a selection policy picks the most promising path through the resulting
tree. The path becomes a plan that a runner executes one action at a time,
rebuilding it when the world changes under it.

# Concept

The planner knows nothing about the domain it plans for. A domain provides
three things through the interfaces in pkg/ports:

  - a State that can be cloned and compared,
  - an ActionGenerator listing the candidate actions in a state,
  - a World holding the live state of each agent.

Each Action reports its cost and applies itself to a cloned state. The tree
records, for every node, the action that produced it, the cumulative cost and
the gain relative to the root.

The bundled pkg/trade domain models merchants buying, selling and travelling
between stations.

# Policies

  - greedy: the node with the highest gain at any depth.
  - final-level: the best node of the deepest level, even at a loss.
  - trend: the deepest-level node whose gains grow fastest along its path.
  - goal: the cheapest node satisfying a goal expression.

# Usage

	planner, err := lookahead.New(lookahead.WithMaxDepth(4))
	if err != nil {
		log.Fatal(err)
	}

	world, _ := scenario.World()
	root, _ := world.Snapshot(ctx, "m1")
	plan, err := planner.Plan(ctx, root, trade.Generator{})

To execute plans against a world and persist them between runs:

	r := planner.NewRunner("m1", world, trade.Generator{},
		runner.WithStore(file.New("./plans")),
		runner.WithResolver(trade.Resolver{}),
	)
	steps, err := r.Run(ctx, 10)

The lookahead command (cmd/lookahead) exposes the same operations over a CLI,
an HTTP API and an MCP server.
*/
package lookahead
