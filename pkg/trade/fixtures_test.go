package trade_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/trade"
)

// twoStations is the canonical arbitrage market: ore is cheap at "a" and
// dear at "b".
func twoStations(t *testing.T) *trade.Market {
	t.Helper()
	m, err := trade.NewMarket(trade.DefaultTravelCost, trade.DefaultIdleCost,
		trade.NewStation("a").AddGood("ore", 50, 9, 9),
		trade.NewStation("b").AddGood("ore", 50, 14, 14),
	)
	require.NoError(t, err)
	return m
}

func merchant(m *trade.Market, money int64) *trade.State {
	s := trade.NewState(m, "a", money)
	s.Capacity["ore"] = 10
	return s
}
