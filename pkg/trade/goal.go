package trade

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Goal is a compiled expression over a merchant's initial and candidate state.
//
// The expression sees the candidate as money, location, stock and capacity,
// the starting point as initial.money, initial.location and so on, and the
// difference in money as gain. Examples:
//
//	money > initial.money
//	location == "port" && stock["ore"] == 0
//	gain >= 10
type Goal struct {
	source  string
	program *vm.Program
}

var _ domain.Goal = (*Goal)(nil)

type stateEnv struct {
	Money    int64            `expr:"money"`
	Location string           `expr:"location"`
	Stock    map[string]int64 `expr:"stock"`
	Capacity map[string]int64 `expr:"capacity"`
}

type goalEnv struct {
	Money    int64            `expr:"money"`
	Location string           `expr:"location"`
	Stock    map[string]int64 `expr:"stock"`
	Capacity map[string]int64 `expr:"capacity"`
	Gain     int64            `expr:"gain"`
	Initial  stateEnv         `expr:"initial"`
}

// CompileGoal parses and type-checks a goal expression.
func CompileGoal(source string) (*Goal, error) {
	program, err := expr.Compile(source,
		expr.Env(goalEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid goal %q: %w", source, err)
	}
	return &Goal{source: source, program: program}, nil
}

// Check evaluates the goal. Evaluation errors count as not satisfied.
func (g *Goal) Check(before, after domain.State) bool {
	b, a := asState(before), asState(after)
	env := goalEnv{
		Money:    a.Money,
		Location: a.Location,
		Stock:    a.Stock,
		Capacity: a.Capacity,
		Gain:     a.Money - b.Money,
		Initial: stateEnv{
			Money:    b.Money,
			Location: b.Location,
			Stock:    b.Stock,
			Capacity: b.Capacity,
		},
	}

	out, err := expr.Run(g.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// String returns the source expression.
func (g *Goal) String() string {
	return g.source
}
