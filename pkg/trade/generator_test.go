package trade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports/tests"
	"github.com/aretw0/lookahead/pkg/trade"
)

func TestGenerator_Contract(t *testing.T) {
	m := twoStations(t)

	loaded := merchant(m, 3)
	loaded.Stock["ore"] = 4

	atB := merchant(m, 30)
	atB.Location = "b"

	samples := []domain.State{merchant(m, 11), merchant(m, 0), loaded, atB}
	tests.ActionGeneratorContractTest(t, trade.Generator{}, samples, func(s domain.State) string {
		return s.(*trade.State).String()
	})
}

func TestGenerator_Order(t *testing.T) {
	m, err := trade.NewMarket(2, 1,
		trade.NewStation("a").AddGood("ore", 1, 9, 9).AddGood("grain", 1, 3, 2),
		trade.NewStation("b"),
		trade.NewStation("c"),
	)
	if err != nil {
		t.Fatal(err)
	}

	s := trade.NewState(m, "a", 50)
	s.Stock["ore"] = 1
	s.Stock["silk"] = 0

	var labels []string
	for _, a := range (trade.Generator{}).Candidates(s) {
		labels = append(labels, domain.Label(a))
	}
	assert.Equal(t, []string{
		"sell(ore)",
		"buy(grain)", "buy(ore)",
		"travel(b)", "travel(c)",
		"idle",
	}, labels)
}
