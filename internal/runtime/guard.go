package runtime

import (
	"fmt"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Guard is the repetition rule applied along a root-to-node path.
type Guard string

const (
	// GuardByName rejects an action whose name already appears on the path,
	// whatever its parameters: buy(ore) blocks a later buy(grain).
	GuardByName Guard = "name"

	// GuardByKey rejects only an exact repeat of name and parameters.
	GuardByKey Guard = "key"
)

// ParseGuard converts a configuration value to a Guard.
func ParseGuard(s string) (Guard, error) {
	switch Guard(s) {
	case "", GuardByName:
		return GuardByName, nil
	case GuardByKey:
		return GuardByKey, nil
	}
	return "", fmt.Errorf("unknown repetition guard %q (want %q or %q)", s, GuardByName, GuardByKey)
}

// Allows reports whether candidate may extend a path.
func (g Guard) Allows(path []domain.Action, candidate domain.Action) bool {
	if g == GuardByKey {
		key := domain.ActionKey(candidate)
		for _, a := range path {
			if domain.ActionKey(a) == key {
				return false
			}
		}
		return true
	}

	name := candidate.Name()
	for _, a := range path {
		if a.Name() == name {
			return false
		}
	}
	return true
}
