package trade

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// World holds the live merchants and the current market.
// Safe for concurrent use.
type World struct {
	mu        sync.RWMutex
	market    *Market
	merchants map[string]*State
	version   uint64
	logger    *slog.Logger
}

var _ ports.World = (*World)(nil)

// WorldOption configures the World.
type WorldOption func(*World)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorld creates a world around a market.
func NewWorld(m *Market, opts ...WorldOption) *World {
	w := &World{
		market:    m,
		merchants: make(map[string]*State),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddMerchant registers a merchant. Its state is copied and bound to the
// world's market.
func (w *World) AddMerchant(id string, s *State) error {
	if id == "" {
		return fmt.Errorf("merchant id cannot be empty")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.market.Station(s.Location); !ok {
		return fmt.Errorf("merchant %q: unknown station %q", id, s.Location)
	}
	if _, dup := w.merchants[id]; dup {
		return fmt.Errorf("duplicate merchant %q", id)
	}
	live := s.clone()
	live.market = w.market
	w.merchants[id] = live
	return nil
}

// Snapshot returns a private copy of a merchant bound to the current market.
func (w *World) Snapshot(ctx context.Context, agentID string) (domain.State, error) {
	return w.Merchant(agentID)
}

// Merchant returns a private copy of a merchant bound to the current market.
func (w *World) Merchant(agentID string) (*State, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	live, ok := w.merchants[agentID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrAgentNotFound, agentID)
	}
	snap := live.clone()
	snap.market = w.market
	return snap, nil
}

// Apply executes an action against the merchant's live state at current prices.
func (w *World) Apply(ctx context.Context, agentID string, action domain.Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	live, ok := w.merchants[agentID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrAgentNotFound, agentID)
	}
	live.market = w.market

	if !action.Applicable(live) {
		return fmt.Errorf("%w: %s for %q at %s", domain.ErrActionNotApplicable, domain.Label(action), agentID, live)
	}

	w.merchants[agentID] = asState(action.Apply(live.clone()))
	w.logger.Debug("action applied",
		"agent", agentID,
		"action", domain.Label(action),
		"state", w.merchants[agentID].String(),
	)
	return nil
}

// Version changes whenever prices or capacities change.
func (w *World) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Market returns the current market snapshot.
func (w *World) Market() *Market {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.market
}

// Merchants returns the registered merchant IDs, sorted.
func (w *World) Merchants() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.merchants)
}

// SetPrices publishes a new quote for a good at a station.
func (w *World) SetPrices(station, good string, sellPrice, buyPrice int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := w.market.WithPrices(station, good, sellPrice, buyPrice)
	if err != nil {
		return err
	}
	w.market = next
	w.version++
	w.logger.Info("prices updated",
		"station", station,
		"good", good,
		"sell_price", sellPrice,
		"buy_price", buyPrice,
		"version", w.version,
	)
	return nil
}

// SetCapacity changes how many units of a good a merchant can hold.
func (w *World) SetCapacity(agentID, good string, capacity int64) error {
	if capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	live, ok := w.merchants[agentID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrAgentNotFound, agentID)
	}
	next := live.clone()
	next.Capacity[good] = capacity
	w.merchants[agentID] = next
	w.version++
	w.logger.Info("capacity updated",
		"agent", agentID,
		"good", good,
		"capacity", capacity,
		"version", w.version,
	)
	return nil
}

// Stations returns the station names of the current market, sorted.
func (w *World) Stations() []string {
	return w.Market().StationNames()
}
