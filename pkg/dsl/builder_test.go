package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/dsl"
	"github.com/aretw0/lookahead/pkg/trade"
)

func TestBuilder_World(t *testing.T) {
	b := dsl.New().Name("arbitrage").TravelCost(3).IdleCost(1).DefaultCapacity(5)

	b.Station("a").Good("ore").Stock(50).Sells(9).Buys(9).
		Good("grain").Sells(2).Buys(1)
	b.Station("b").Good("ore").Sells(14).Buys(14)

	b.Merchant("m1").At("a").Money(11).Capacity("ore", 10)
	b.Merchant("m2").At("b").Money(3).Holding("ore", 2)

	w, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, w.Merchants())
	assert.Equal(t, int64(3), w.Market().TravelCost)

	st, ok := w.Market().Station("a")
	require.True(t, ok)
	assert.Equal(t, int64(2), st.SellPrices["grain"])

	snap, err := w.Snapshot(context.Background(), "m1")
	require.NoError(t, err)
	m1 := snap.(*trade.State)
	assert.Equal(t, int64(10), m1.Capacity["ore"])
	assert.Equal(t, int64(5), m1.Capacity["grain"])

	m2, err := w.Merchant("m2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m2.Stock["ore"])
}

func TestBuilder_ReusesBuilders(t *testing.T) {
	b := dsl.New()
	b.Station("a").Good("ore").Sells(1)
	b.Station("a").Good("ore").Buys(2)

	sc, err := b.Scenario()
	require.NoError(t, err)
	require.Len(t, sc.Stations, 1)
	require.Len(t, sc.Stations[0].Goods, 1)
	assert.Equal(t, int64(1), sc.Stations[0].Goods[0].SellPrice)
	assert.Equal(t, int64(2), sc.Stations[0].Goods[0].BuyPrice)
}

func TestBuilder_Invalid(t *testing.T) {
	b := dsl.New()
	b.Station("a")
	b.Merchant("m1").At("nowhere")

	_, err := b.Build()
	assert.Error(t, err)

	_, err = dsl.New().Build()
	assert.Error(t, err, "no stations")
}
