package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a capability that transforms a State.
//
// Applicable and Cost must not mutate their argument. Apply receives a private
// copy owned by the caller and may modify it in place; it must return the
// resulting state and be deterministic for a given input.
type Action interface {
	// Name identifies the kind of action (e.g. "buy"). Two actions with the
	// same name are considered equal by the default repetition guard.
	Name() string

	// Params returns the parameters distinguishing this action from others of
	// the same kind (e.g. {"good": "ore"}). It may return nil.
	Params() map[string]any

	Applicable(s State) bool
	Cost(s State) float64
	Apply(s State) State
}

// ActionKey returns the full identity of an action: its name followed by its
// parameters in key order.
func ActionKey(a Action) string {
	params := a.Params()
	if len(params) == 0 {
		return a.Name()
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return a.Name() + "(" + strings.Join(parts, ",") + ")"
}

// Label returns a short human readable form such as "buy(ore)".
func Label(a Action) string {
	if a == nil {
		return "root"
	}
	params := a.Params()
	if len(params) == 0 {
		return a.Name()
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, fmt.Sprint(params[k]))
	}
	return a.Name() + "(" + strings.Join(values, ",") + ")"
}
