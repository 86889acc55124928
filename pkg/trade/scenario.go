package trade

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCapacity is used for every good a merchant does not list a capacity for.
const DefaultCapacity int64 = 100

// Scenario describes a market, its merchants and planning preferences.
type Scenario struct {
	Name            string             `yaml:"name" json:"name"`
	TravelCost      *int64             `yaml:"travel_cost,omitempty" json:"travel_cost,omitempty"`
	IdleCost        *int64             `yaml:"idle_cost,omitempty" json:"idle_cost,omitempty"`
	DefaultCapacity *int64             `yaml:"default_capacity,omitempty" json:"default_capacity,omitempty"`
	MaxDepth        *int               `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
	Policy          string             `yaml:"policy,omitempty" json:"policy,omitempty"`
	Guard           string             `yaml:"guard,omitempty" json:"guard,omitempty"`
	Goal            string             `yaml:"goal,omitempty" json:"goal,omitempty"`
	Stations        []StationConfig    `yaml:"stations" json:"stations"`
	Merchants       []MerchantConfig   `yaml:"merchants" json:"merchants"`
	Shocks          []PriceShockConfig `yaml:"shocks,omitempty" json:"shocks,omitempty"`
}

// StationConfig quotes goods at a station.
type StationConfig struct {
	Name  string       `yaml:"name" json:"name"`
	Goods []GoodConfig `yaml:"goods" json:"goods"`
}

// GoodConfig is one quote. SellPrice is what the station asks, BuyPrice what it pays.
type GoodConfig struct {
	Name      string `yaml:"name" json:"name"`
	Stock     int64  `yaml:"stock" json:"stock"`
	SellPrice int64  `yaml:"sell_price" json:"sell_price"`
	BuyPrice  int64  `yaml:"buy_price" json:"buy_price"`
}

// MerchantConfig is a merchant's starting point.
type MerchantConfig struct {
	ID       string           `yaml:"id" json:"id"`
	Station  string           `yaml:"station" json:"station"`
	Money    int64            `yaml:"money" json:"money"`
	Stock    map[string]int64 `yaml:"stock,omitempty" json:"stock,omitempty"`
	Capacity map[string]int64 `yaml:"capacity,omitempty" json:"capacity,omitempty"`
}

// PriceShockConfig changes a quote once the simulation reaches a tick.
type PriceShockConfig struct {
	Tick      int    `yaml:"tick" json:"tick"`
	Station   string `yaml:"station" json:"station"`
	Good      string `yaml:"good" json:"good"`
	SellPrice int64  `yaml:"sell_price" json:"sell_price"`
	BuyPrice  int64  `yaml:"buy_price" json:"buy_price"`
}

// LoadScenario reads a scenario from a YAML or JSON file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}

	sc, err := ParseScenario(data, format)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario. format is "yaml" or "json".
func ParseScenario(data []byte, format string) (*Scenario, error) {
	var sc Scenario
	switch format {
	case "json":
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks references and value ranges.
func (sc *Scenario) Validate() error {
	if len(sc.Stations) == 0 {
		return fmt.Errorf("scenario has no stations")
	}
	if sc.MaxDepth != nil && *sc.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative")
	}

	stations := make(map[string]bool, len(sc.Stations))
	for _, st := range sc.Stations {
		if st.Name == "" {
			return fmt.Errorf("station name cannot be empty")
		}
		if stations[st.Name] {
			return fmt.Errorf("duplicate station %q", st.Name)
		}
		stations[st.Name] = true
		for _, g := range st.Goods {
			if g.Name == "" {
				return fmt.Errorf("station %q: good name cannot be empty", st.Name)
			}
			if g.SellPrice < 0 || g.BuyPrice < 0 {
				return fmt.Errorf("station %q: good %q has negative price", st.Name, g.Name)
			}
		}
	}

	merchants := make(map[string]bool, len(sc.Merchants))
	for _, m := range sc.Merchants {
		if m.ID == "" {
			return fmt.Errorf("merchant id cannot be empty")
		}
		if merchants[m.ID] {
			return fmt.Errorf("duplicate merchant %q", m.ID)
		}
		merchants[m.ID] = true
		if !stations[m.Station] {
			return fmt.Errorf("merchant %q: unknown station %q", m.ID, m.Station)
		}
		if m.Money < 0 {
			return fmt.Errorf("merchant %q: money cannot be negative", m.ID)
		}
	}

	for i, s := range sc.Shocks {
		if !stations[s.Station] {
			return fmt.Errorf("shock %d: unknown station %q", i, s.Station)
		}
		if s.Tick < 0 {
			return fmt.Errorf("shock %d: tick cannot be negative", i)
		}
	}
	return nil
}

// Market builds the market snapshot described by the scenario.
func (sc *Scenario) Market() (*Market, error) {
	travel, idle := DefaultTravelCost, DefaultIdleCost
	if sc.TravelCost != nil {
		travel = *sc.TravelCost
	}
	if sc.IdleCost != nil {
		idle = *sc.IdleCost
	}

	stations := make([]*Station, 0, len(sc.Stations))
	for _, cfg := range sc.Stations {
		st := NewStation(cfg.Name)
		for _, g := range cfg.Goods {
			st.AddGood(g.Name, g.Stock, g.SellPrice, g.BuyPrice)
		}
		stations = append(stations, st)
	}
	return NewMarket(travel, idle, stations...)
}

// World builds a live world with every merchant registered.
// Goods without an explicit capacity get the scenario's default capacity.
func (sc *Scenario) World(opts ...WorldOption) (*World, error) {
	m, err := sc.Market()
	if err != nil {
		return nil, err
	}

	capacity := DefaultCapacity
	if sc.DefaultCapacity != nil {
		capacity = *sc.DefaultCapacity
	}

	w := NewWorld(m, opts...)
	for _, mc := range sc.Merchants {
		s := NewState(m, mc.Station, mc.Money)
		for _, good := range m.Goods() {
			s.Capacity[good] = capacity
		}
		for good, c := range mc.Capacity {
			s.Capacity[good] = c
		}
		for good, q := range mc.Stock {
			s.Stock[good] = q
		}
		if err := w.AddMerchant(mc.ID, s); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Depth returns the configured horizon, or fallback when unset.
func (sc *Scenario) Depth(fallback int) int {
	if sc.MaxDepth == nil {
		return fallback
	}
	return *sc.MaxDepth
}

// ShocksAt returns the price shocks scheduled for a tick, in file order.
func (sc *Scenario) ShocksAt(tick int) []PriceShockConfig {
	var out []PriceShockConfig
	for _, s := range sc.Shocks {
		if s.Tick == tick {
			out = append(out, s)
		}
	}
	return out
}
