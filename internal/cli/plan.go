package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/runner"
)

// RunPlan builds and reports a plan for each selected merchant without
// executing anything. Plans are saved to the configured store so a later
// simulate run can resume them.
func RunPlan(ctx context.Context, opts Options) error {
	setup, err := Prepare(opts)
	if err != nil {
		return err
	}
	agents, err := setup.Agents(opts)
	if err != nil {
		return err
	}
	reporter, err := NewReporter(opts.Out, opts.Format)
	if err != nil {
		return err
	}
	sessions, closer, err := OpenSessions(opts.Store, setup.Logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, id := range agents {
		r := setup.NewRunner(id,
			runner.WithReporter(reporter),
			runner.WithStore(sessions.Store()),
		)
		err := sessions.WithLock(ctx, id, func(ctx context.Context) error {
			_, err := r.Replan(ctx)
			return err
		})
		if errors.Is(err, domain.ErrNoPlan) {
			fmt.Fprintf(opts.Out, "%s: no plan satisfies the goal within %d steps\n", id, setup.Engine.MaxDepth())
			continue
		}
		if err != nil {
			return fmt.Errorf("planning for %s: %w", id, err)
		}
	}
	return nil
}
