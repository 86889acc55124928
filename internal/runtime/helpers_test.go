package runtime_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
	"github.com/aretw0/lookahead/pkg/trade"
)

// counter is a minimal domain: a number that actions add to.
type counter struct{ n int }

func (c *counter) Clone() domain.State { cp := *c; return &cp }

// add increases the counter by k and earns k.
type add struct{ k int }

func (a add) Name() string { return fmt.Sprintf("add%d", a.k) }

func (a add) Params() map[string]any { return nil }

func (a add) Applicable(domain.State) bool { return true }

func (a add) Cost(domain.State) float64 { return -float64(a.k) }

func (a add) Apply(s domain.State) domain.State {
	s.(*counter).n += a.k
	return s
}

func adders(ks ...int) ports.GeneratorFunc {
	return func(domain.State) []domain.Action {
		out := make([]domain.Action, 0, len(ks))
		for _, k := range ks {
			out = append(out, add{k: k})
		}
		return out
	}
}

func arbitrage(t *testing.T, money int64) *trade.State {
	t.Helper()
	m, err := trade.NewMarket(2, 1,
		trade.NewStation("a").AddGood("ore", 50, 9, 9),
		trade.NewStation("b").AddGood("ore", 50, 14, 14),
	)
	require.NoError(t, err)

	s := trade.NewState(m, "a", money)
	s.Capacity["ore"] = 10
	return s
}

func labels(p *domain.Plan) []string {
	out := make([]string, 0, p.Len())
	for _, a := range p.Actions {
		out = append(out, domain.Label(a))
	}
	return out
}
