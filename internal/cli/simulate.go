package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

// DefaultTicks bounds a simulation when no tick count is given.
const DefaultTicks = 20

// SimulateOptions extends Options with the simulation controls.
type SimulateOptions struct {
	Options

	// Ticks is the number of rounds; each round steps every merchant once.
	Ticks int

	// Resume continues the plans saved in the store instead of planning afresh.
	Resume bool

	// Interrupts stops the simulation between two rounds.
	Interrupts <-chan struct{}
}

// Summary is a merchant's final position, reported when a simulation ends.
type Summary struct {
	Type     string           `json:"type"`
	AgentID  string           `json:"agent_id"`
	Location string           `json:"location"`
	Money    int64            `json:"money"`
	Stock    map[string]int64 `json:"stock"`
	Steps    int              `json:"steps"`
}

// RunSimulate executes the merchants' plans round by round against the
// scenario world. Scheduled price shocks are applied at the start of their
// round, which makes every runner rebuild its plan on its next step.
// The simulation stops early once no merchant has anything worth doing and
// no shock is pending.
func RunSimulate(ctx context.Context, opts SimulateOptions) error {
	setup, err := Prepare(opts.Options)
	if err != nil {
		return err
	}
	agents, err := setup.Agents(opts.Options)
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

	runners := make(map[string]*runner.Runner, len(agents))
	for _, id := range agents {
		r := setup.NewRunner(id,
			runner.WithReporter(reporter),
			runner.WithStore(sessions.Store()),
		)
		if opts.Resume {
			err := sessions.WithLock(ctx, id, func(ctx context.Context) error {
				_, err := r.Resume(ctx)
				return err
			})
			if err != nil && !errors.Is(err, domain.ErrNoPlan) {
				return fmt.Errorf("resuming %s: %w", id, err)
			}
		}
		runners[id] = r
	}

	ticks := opts.Ticks
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	steps := make(map[string]int, len(agents))

	var runErr error
rounds:
	for tick := 1; tick <= ticks; tick++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break rounds
		case <-opts.Interrupts:
			runErr = runner.ErrInterrupted
			break rounds
		default:
		}

		for _, shock := range setup.Scenario.ShocksAt(tick) {
			if err := setup.World.SetPrices(shock.Station, shock.Good, shock.SellPrice, shock.BuyPrice); err != nil {
				return fmt.Errorf("price shock at tick %d: %w", tick, err)
			}
			setup.Logger.Info("price shock",
				"tick", tick,
				"station", shock.Station,
				"good", shock.Good,
				"sell_price", shock.SellPrice,
				"buy_price", shock.BuyPrice,
			)
		}

		active := 0
		for _, id := range agents {
			acted, err := stepAgent(ctx, sessions.WithLock, runners[id])
			if err != nil {
				return fmt.Errorf("tick %d, %s: %w", tick, id, err)
			}
			if acted {
				active++
				steps[id]++
			}
		}

		if active == 0 && !shockPending(setup.Scenario, tick) {
			setup.Logger.Info("simulation settled", "tick", tick)
			break
		}
	}

	if err := writeSummaries(opts.Options, setup.World, agents, steps); err != nil {
		return err
	}
	return runErr
}

type lockFunc func(ctx context.Context, agentID string, fn func(context.Context) error) error

// stepAgent executes one step, replacing an exhausted plan once. It reports
// false when the merchant has nothing worth doing.
func stepAgent(ctx context.Context, withLock lockFunc, r *runner.Runner) (bool, error) {
	acted := false
	err := withLock(ctx, r.AgentID, func(ctx context.Context) error {
		_, err := r.Step(ctx)
		if errors.Is(err, domain.ErrPlanExhausted) {
			if _, err := r.Replan(ctx); err != nil {
				return err
			}
			_, err = r.Step(ctx)
		}
		if err == nil {
			acted = true
		}
		return err
	})
	if errors.Is(err, domain.ErrPlanExhausted) || errors.Is(err, domain.ErrNoPlan) {
		return false, nil
	}
	return acted, err
}

func shockPending(sc *trade.Scenario, tick int) bool {
	for _, s := range sc.Shocks {
		if s.Tick > tick {
			return true
		}
	}
	return false
}

func writeSummaries(opts Options, world *trade.World, agents []string, steps map[string]int) error {
	for _, id := range agents {
		m, err := world.Merchant(id)
		if err != nil {
			return err
		}
		if opts.Format == FormatJSON {
			err = json.NewEncoder(opts.Out).Encode(Summary{
				Type:     "summary",
				AgentID:  id,
				Location: m.Location,
				Money:    m.Money,
				Stock:    m.Stock,
				Steps:    steps[id],
			})
		} else {
			_, err = fmt.Fprintf(opts.Out, "%s finished after %d steps: %s\n", id, steps[id], m)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
