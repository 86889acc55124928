/*
Package runner executes plans one step at a time against a live world.

A Cursor hands out the steps of the installed plan. A Runner owns a cursor
for one agent and drives it: it builds the first plan, applies each step
through the world, persists its position, and rebuilds the plan whenever the
world reports that shared resources changed. A rebuilt plan replaces the old
one; the abandoned steps are never resumed.

# Usage

	r := runner.NewRunner("m1", world, trade.Generator{},
		runner.WithStore(store),
		runner.WithResolver(trade.Resolver{}),
		runner.WithReporter(runner.NewTextReporter(os.Stdout)),
	)

	if _, err := r.Resume(ctx); err != nil && !errors.Is(err, domain.ErrNoPlan) {
		log.Fatal(err)
	}
	steps, err := r.Run(ctx, 20)
*/
package runner
