package trade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/lookahead/pkg/trade"
)

func TestDiff(t *testing.T) {
	m := twoStations(t)
	before := merchant(m, 11)

	after := merchant(m, 2)
	after.Stock["ore"] = 1

	d := trade.Diff(before, after)
	assert.Nil(t, d.Location)
	assert.Equal(t, int64(-9), d.MoneyDelta)
	assert.Equal(t, map[string]int64{"ore": 1}, d.StockDelta)
	assert.False(t, d.IsEmpty())

	moved := merchant(m, 11)
	moved.Location = "b"
	d = trade.Diff(before, moved)
	if assert.NotNil(t, d.Location) {
		assert.Equal(t, "b", *d.Location)
	}

	assert.True(t, trade.Diff(before, before.Clone().(*trade.State)).IsEmpty())
	assert.Nil(t, trade.Diff(before, nil))
}
