package tests

import (
	"testing"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// ActionGeneratorContractTest is a reusable test suite that verifies if a
// generator complies with ports.ActionGenerator for the given sample states.
// fingerprint renders a state so the suite can detect mutation.
func ActionGeneratorContractTest(t *testing.T, gen ports.ActionGenerator, samples []domain.State, fingerprint func(domain.State) string) {
	t.Helper()

	// 1. Candidates must not mutate the state they inspect
	t.Run("Candidates_Pure", func(t *testing.T) {
		for i, s := range samples {
			before := fingerprint(s)
			for _, a := range gen.Candidates(s) {
				a.Applicable(s)
				a.Cost(s)
			}
			if after := fingerprint(s); after != before {
				t.Errorf("sample %d mutated by candidate generation: %s -> %s", i, before, after)
			}
		}
	})

	// 2. Order must be deterministic across calls
	t.Run("Candidates_Deterministic", func(t *testing.T) {
		for i, s := range samples {
			first := keys(gen.Candidates(s))
			for run := 0; run < 5; run++ {
				again := keys(gen.Candidates(s))
				if len(again) != len(first) {
					t.Fatalf("sample %d: got %d candidates, want %d", i, len(again), len(first))
				}
				for j := range first {
					if first[j] != again[j] {
						t.Errorf("sample %d: candidate %d changed from %s to %s", i, j, first[j], again[j])
					}
				}
			}
		}
	})

	// 3. Apply works on a private copy and leaves the original untouched
	t.Run("Apply_OnCopy", func(t *testing.T) {
		for i, s := range samples {
			before := fingerprint(s)
			for _, a := range gen.Candidates(s) {
				if !a.Applicable(s) {
					continue
				}
				if next := a.Apply(s.Clone()); next == nil {
					t.Errorf("sample %d: %s returned a nil state", i, domain.ActionKey(a))
				}
			}
			if after := fingerprint(s); after != before {
				t.Errorf("sample %d mutated through Apply on a clone: %s -> %s", i, before, after)
			}
		}
	})
}

func keys(actions []domain.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, domain.ActionKey(a))
	}
	return out
}
