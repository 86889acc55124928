package trade

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// Resolver rebuilds trading actions from persisted plan steps.
type Resolver struct{}

var _ ports.ActionResolver = Resolver{}

type goodParams struct {
	Good string `mapstructure:"good"`
}

type travelParams struct {
	To string `mapstructure:"to"`
}

func (Resolver) Resolve(step domain.PlanStep) (domain.Action, error) {
	switch step.Name {
	case ActionSell, ActionBuy:
		var p goodParams
		if err := decodeParams(step.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid %s params: %w", step.Name, err)
		}
		if p.Good == "" {
			return nil, fmt.Errorf("invalid %s params: good is required", step.Name)
		}
		if step.Name == ActionSell {
			return Sell{Good: p.Good}, nil
		}
		return Buy{Good: p.Good}, nil

	case ActionTravel:
		var p travelParams
		if err := decodeParams(step.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid travel params: %w", err)
		}
		if p.To == "" {
			return nil, fmt.Errorf("invalid travel params: to is required")
		}
		return Travel{To: p.To}, nil

	case ActionIdle:
		return Idle{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, step.Name)
}

func decodeParams(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
