package trade

import (
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// Generator enumerates trading candidates for a merchant state, in a fixed
// order: sells by good, buys by good, travels by destination, then idle.
// Affordability and capacity gates are enforced by each action's Applicable.
type Generator struct{}

var _ ports.ActionGenerator = Generator{}

func (Generator) Candidates(s domain.State) []domain.Action {
	st := asState(s)
	var out []domain.Action

	for _, good := range sortedKeys(st.Stock) {
		if st.Stock[good] > 0 {
			out = append(out, Sell{Good: good})
		}
	}

	if station, ok := st.station(); ok {
		for _, good := range sortedKeys(station.SellPrices) {
			out = append(out, Buy{Good: good})
		}
	}

	if st.market != nil {
		for _, name := range st.market.names {
			if name != st.Location {
				out = append(out, Travel{To: name})
			}
		}
	}

	return append(out, Idle{})
}
