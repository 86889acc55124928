package trade

// StateDiff represents the changes between two merchant states.
// It is designed to be serialized to JSON for step reports.
type StateDiff struct {
	// Location is set only when the merchant moved.
	Location *string `json:"location,omitempty"`

	MoneyDelta int64 `json:"money_delta"`

	// StockDelta contains only goods whose quantity changed.
	StockDelta map[string]int64 `json:"stock_delta,omitempty"`
}

// Diff calculates the difference between before and after.
// If before is nil, it describes after as a change from an empty merchant.
func Diff(before, after *State) *StateDiff {
	if after == nil {
		return nil
	}
	if before == nil {
		before = &State{}
	}

	diff := &StateDiff{MoneyDelta: after.Money - before.Money}
	if before.Location != after.Location {
		loc := after.Location
		diff.Location = &loc
	}

	for good, qty := range after.Stock {
		if d := qty - before.Stock[good]; d != 0 {
			if diff.StockDelta == nil {
				diff.StockDelta = make(map[string]int64)
			}
			diff.StockDelta[good] = d
		}
	}
	for good, qty := range before.Stock {
		if _, ok := after.Stock[good]; !ok && qty != 0 {
			if diff.StockDelta == nil {
				diff.StockDelta = make(map[string]int64)
			}
			diff.StockDelta[good] = -qty
		}
	}
	return diff
}

// IsEmpty reports whether nothing changed.
func (d *StateDiff) IsEmpty() bool {
	return d == nil || (d.Location == nil && d.MoneyDelta == 0 && len(d.StockDelta) == 0)
}
