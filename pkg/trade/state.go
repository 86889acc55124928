package trade

import (
	"fmt"
	"maps"
	"strings"

	"github.com/aretw0/lookahead/pkg/domain"
)

// State is a merchant's resources, bound to the market it trades in.
type State struct {
	Location string
	Money    int64
	Stock    map[string]int64
	Capacity map[string]int64

	market *Market
}

var _ domain.State = (*State)(nil)

// NewState creates a merchant state at a station of m.
func NewState(m *Market, location string, money int64) *State {
	return &State{
		Location: location,
		Money:    money,
		Stock:    make(map[string]int64),
		Capacity: make(map[string]int64),
		market:   m,
	}
}

// Clone copies the merchant's resources. The market snapshot is shared.
func (s *State) Clone() domain.State {
	return s.clone()
}

func (s *State) clone() *State {
	return &State{
		Location: s.Location,
		Money:    s.Money,
		Stock:    maps.Clone(s.Stock),
		Capacity: maps.Clone(s.Capacity),
		market:   s.market,
	}
}

// Market returns the snapshot the state is evaluated against.
func (s *State) Market() *Market {
	return s.market
}

// Room returns how many more units of a good the merchant can hold.
func (s *State) Room(good string) int64 {
	return s.Capacity[good] - s.Stock[good]
}

func (s *State) station() (*Station, bool) {
	if s.market == nil {
		return nil, false
	}
	return s.market.Station(s.Location)
}

// String renders the state deterministically.
func (s *State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s money=%d", s.Location, s.Money)
	for _, g := range sortedKeys(s.Stock) {
		fmt.Fprintf(&sb, " %s=%d/%d", g, s.Stock[g], s.Capacity[g])
	}
	return sb.String()
}

func asState(s domain.State) *State {
	return s.(*State)
}
