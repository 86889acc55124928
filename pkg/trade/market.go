package trade

import (
	"fmt"
	"maps"
	"sort"
)

// Default fees charged by travel and idle.
const (
	DefaultTravelCost int64 = 2
	DefaultIdleCost   int64 = 1
)

// Station is a location quoting prices for goods.
type Station struct {
	Name string

	// SellPrices is what the station asks per unit: a merchant's purchase price.
	SellPrices map[string]int64

	// BuyPrices is what the station pays per unit: a merchant's sale price.
	BuyPrices map[string]int64

	// Stock is the station's own inventory, informational only.
	Stock map[string]int64
}

// NewStation creates a station with no goods.
func NewStation(name string) *Station {
	return &Station{
		Name:       name,
		SellPrices: make(map[string]int64),
		BuyPrices:  make(map[string]int64),
		Stock:      make(map[string]int64),
	}
}

// AddGood quotes a good at the station.
func (s *Station) AddGood(good string, stock, sellPrice, buyPrice int64) *Station {
	s.Stock[good] = stock
	s.SellPrices[good] = sellPrice
	s.BuyPrices[good] = buyPrice
	return s
}

func (s *Station) clone() *Station {
	return &Station{
		Name:       s.Name,
		SellPrices: maps.Clone(s.SellPrices),
		BuyPrices:  maps.Clone(s.BuyPrices),
		Stock:      maps.Clone(s.Stock),
	}
}

// Market is an immutable snapshot of stations, prices and fees.
// States share a Market by pointer; updates produce a new Market.
type Market struct {
	TravelCost int64
	IdleCost   int64

	stations map[string]*Station
	names    []string
}

// NewMarket creates a market from stations. Stations must not be modified
// after being handed to the market.
func NewMarket(travelCost, idleCost int64, stations ...*Station) (*Market, error) {
	m := &Market{
		TravelCost: travelCost,
		IdleCost:   idleCost,
		stations:   make(map[string]*Station, len(stations)),
	}
	for _, s := range stations {
		if s.Name == "" {
			return nil, fmt.Errorf("station name cannot be empty")
		}
		if _, dup := m.stations[s.Name]; dup {
			return nil, fmt.Errorf("duplicate station %q", s.Name)
		}
		m.stations[s.Name] = s
		m.names = append(m.names, s.Name)
	}
	sort.Strings(m.names)
	return m, nil
}

// Station looks up a station by name.
func (m *Market) Station(name string) (*Station, bool) {
	s, ok := m.stations[name]
	return s, ok
}

// StationNames returns every station name in sorted order.
func (m *Market) StationNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Goods returns every good quoted anywhere, sorted.
func (m *Market) Goods() []string {
	seen := make(map[string]bool)
	for _, s := range m.stations {
		for g := range s.SellPrices {
			seen[g] = true
		}
		for g := range s.BuyPrices {
			seen[g] = true
		}
	}
	return sortedKeys(seen)
}

// WithPrices returns a copy of the market with one quote replaced.
func (m *Market) WithPrices(station, good string, sellPrice, buyPrice int64) (*Market, error) {
	s, ok := m.stations[station]
	if !ok {
		return nil, fmt.Errorf("unknown station %q", station)
	}
	if sellPrice < 0 || buyPrice < 0 {
		return nil, fmt.Errorf("prices cannot be negative")
	}

	next := &Market{
		TravelCost: m.TravelCost,
		IdleCost:   m.IdleCost,
		stations:   maps.Clone(m.stations),
		names:      m.names,
	}
	updated := s.clone()
	updated.SellPrices[good] = sellPrice
	updated.BuyPrices[good] = buyPrice
	next.stations[station] = updated
	return next, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
