package trade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/trade"
)

func TestCompileGoal(t *testing.T) {
	m := twoStations(t)
	before := merchant(m, 11)

	after := merchant(m, 14)
	after.Location = "b"
	after.Stock["ore"] = 0

	cases := []struct {
		expr string
		want bool
	}{
		{"money > initial.money", true},
		{"gain >= 3", true},
		{"gain > 3", false},
		{`location == "b"`, true},
		{`location == initial.location`, false},
		{`stock["ore"] == 0`, true},
		{`capacity["ore"] == 10`, true},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			g, err := trade.CompileGoal(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Check(before, after))
			assert.Equal(t, tc.expr, g.String())
		})
	}
}

func TestCompileGoal_Invalid(t *testing.T) {
	_, err := trade.CompileGoal("money +")
	assert.Error(t, err)

	_, err = trade.CompileGoal("money + 1")
	assert.Error(t, err, "goal must be boolean")

	_, err = trade.CompileGoal("fuel > 1")
	assert.Error(t, err, "unknown variable")
}
