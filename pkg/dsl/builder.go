package dsl

import (
	"fmt"

	"github.com/aretw0/lookahead/pkg/trade"
)

// Builder manages the world construction.
type Builder struct {
	sc        trade.Scenario
	stations  map[string]*StationBuilder
	merchants map[string]*MerchantBuilder
	order     []string
	agents    []string
}

// New creates a new world builder.
func New() *Builder {
	return &Builder{
		stations:  make(map[string]*StationBuilder),
		merchants: make(map[string]*MerchantBuilder),
	}
}

// Name labels the scenario.
func (b *Builder) Name(name string) *Builder {
	b.sc.Name = name
	return b
}

// TravelCost sets the fee of every travel.
func (b *Builder) TravelCost(cost int64) *Builder {
	b.sc.TravelCost = &cost
	return b
}

// IdleCost sets the fee of waiting one step.
func (b *Builder) IdleCost(cost int64) *Builder {
	b.sc.IdleCost = &cost
	return b
}

// DefaultCapacity sets the capacity of goods merchants do not configure.
func (b *Builder) DefaultCapacity(capacity int64) *Builder {
	b.sc.DefaultCapacity = &capacity
	return b
}

// Station creates a station, or returns the existing builder.
func (b *Builder) Station(name string) *StationBuilder {
	if sb, ok := b.stations[name]; ok {
		return sb
	}
	sb := &StationBuilder{cfg: trade.StationConfig{Name: name}, builder: b}
	b.stations[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Merchant creates a merchant, or returns the existing builder.
func (b *Builder) Merchant(id string) *MerchantBuilder {
	if mb, ok := b.merchants[id]; ok {
		return mb
	}
	mb := &MerchantBuilder{
		cfg: trade.MerchantConfig{
			ID:       id,
			Stock:    make(map[string]int64),
			Capacity: make(map[string]int64),
		},
		builder: b,
	}
	b.merchants[id] = mb
	b.agents = append(b.agents, id)
	return mb
}

// Scenario returns the validated scenario described so far.
func (b *Builder) Scenario() (*trade.Scenario, error) {
	sc := b.sc
	sc.Stations = nil
	sc.Merchants = nil
	for _, name := range b.order {
		sc.Stations = append(sc.Stations, b.stations[name].config())
	}
	for _, id := range b.agents {
		sc.Merchants = append(sc.Merchants, b.merchants[id].cfg)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	return &sc, nil
}

// Build compiles the description into a live world.
func (b *Builder) Build(opts ...trade.WorldOption) (*trade.World, error) {
	sc, err := b.Scenario()
	if err != nil {
		return nil, err
	}
	return sc.World(opts...)
}

// StationBuilder configures one station.
type StationBuilder struct {
	cfg     trade.StationConfig
	goods   []*GoodBuilder
	builder *Builder
}

// Good quotes a good at the station, or returns its existing builder.
func (sb *StationBuilder) Good(name string) *GoodBuilder {
	for _, gb := range sb.goods {
		if gb.cfg.Name == name {
			return gb
		}
	}
	gb := &GoodBuilder{cfg: trade.GoodConfig{Name: name}, station: sb}
	sb.goods = append(sb.goods, gb)
	return gb
}

// Station jumps to another station, for chaining.
func (sb *StationBuilder) Station(name string) *StationBuilder {
	return sb.builder.Station(name)
}

func (sb *StationBuilder) config() trade.StationConfig {
	cfg := sb.cfg
	cfg.Goods = make([]trade.GoodConfig, 0, len(sb.goods))
	for _, gb := range sb.goods {
		cfg.Goods = append(cfg.Goods, gb.cfg)
	}
	return cfg
}

// GoodBuilder configures a good quoted at a station.
type GoodBuilder struct {
	cfg     trade.GoodConfig
	station *StationBuilder
}

// Stock sets the station's inventory.
func (gb *GoodBuilder) Stock(n int64) *GoodBuilder {
	gb.cfg.Stock = n
	return gb
}

// Sells sets the price a merchant pays here.
func (gb *GoodBuilder) Sells(price int64) *GoodBuilder {
	gb.cfg.SellPrice = price
	return gb
}

// Buys sets the price a merchant receives here.
func (gb *GoodBuilder) Buys(price int64) *GoodBuilder {
	gb.cfg.BuyPrice = price
	return gb
}

// Good quotes another good at the same station.
func (gb *GoodBuilder) Good(name string) *GoodBuilder {
	return gb.station.Good(name)
}

// MerchantBuilder configures one merchant.
type MerchantBuilder struct {
	cfg     trade.MerchantConfig
	builder *Builder
}

// At places the merchant at a station.
func (mb *MerchantBuilder) At(station string) *MerchantBuilder {
	mb.cfg.Station = station
	return mb
}

// Money sets the merchant's funds.
func (mb *MerchantBuilder) Money(money int64) *MerchantBuilder {
	mb.cfg.Money = money
	return mb
}

// Holding gives the merchant some stock.
func (mb *MerchantBuilder) Holding(good string, qty int64) *MerchantBuilder {
	mb.cfg.Stock[good] = qty
	return mb
}

// Capacity limits how much of a good the merchant can carry.
func (mb *MerchantBuilder) Capacity(good string, capacity int64) *MerchantBuilder {
	mb.cfg.Capacity[good] = capacity
	return mb
}
