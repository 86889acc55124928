package trade

import "github.com/aretw0/lookahead/pkg/domain"

// Action names.
const (
	ActionSell   = "sell"
	ActionBuy    = "buy"
	ActionTravel = "travel"
	ActionIdle   = "idle"
)

// Sell converts the whole stock of a good to money at the local buy price.
type Sell struct {
	Good string
}

func (a Sell) Name() string { return ActionSell }

func (a Sell) Params() map[string]any { return map[string]any{"good": a.Good} }

func (a Sell) Applicable(s domain.State) bool {
	st := asState(s)
	station, ok := st.station()
	if !ok {
		return false
	}
	_, quoted := station.BuyPrices[a.Good]
	return quoted && st.Stock[a.Good] > 0
}

// Cost is the negated revenue.
func (a Sell) Cost(s domain.State) float64 {
	return -float64(a.revenue(asState(s)))
}

func (a Sell) Apply(s domain.State) domain.State {
	st := asState(s)
	st.Money += a.revenue(st)
	st.Stock[a.Good] = 0
	return st
}

func (a Sell) revenue(st *State) int64 {
	station, ok := st.station()
	if !ok {
		return 0
	}
	return st.Stock[a.Good] * station.BuyPrices[a.Good]
}

// Buy spends money on a good: floor(money / price) units, clamped to the
// merchant's free capacity. A good quoted at 0 fills the free capacity.
type Buy struct {
	Good string
}

func (a Buy) Name() string { return ActionBuy }

func (a Buy) Params() map[string]any { return map[string]any{"good": a.Good} }

func (a Buy) Applicable(s domain.State) bool {
	st := asState(s)
	price, ok := a.price(st)
	return ok && price >= 0 && price <= st.Money && st.Room(a.Good) > 0
}

func (a Buy) Cost(s domain.State) float64 {
	st := asState(s)
	price, _ := a.price(st)
	return float64(a.Quantity(st) * price)
}

func (a Buy) Apply(s domain.State) domain.State {
	st := asState(s)
	price, _ := a.price(st)
	qty := a.Quantity(st)
	st.Money -= qty * price
	st.Stock[a.Good] += qty
	return st
}

// Quantity returns how many units the merchant would buy.
func (a Buy) Quantity(st *State) int64 {
	price, ok := a.price(st)
	if !ok || price < 0 {
		return 0
	}
	room := st.Room(a.Good)
	if price == 0 {
		return max(room, 0)
	}
	qty := st.Money / price
	if qty > room {
		qty = room
	}
	if qty < 0 {
		return 0
	}
	return qty
}

func (a Buy) price(st *State) (int64, bool) {
	station, ok := st.station()
	if !ok {
		return 0, false
	}
	price, ok := station.SellPrices[a.Good]
	return price, ok
}

// Travel moves the merchant to another station for the market's travel fee.
type Travel struct {
	To string
}

func (a Travel) Name() string { return ActionTravel }

func (a Travel) Params() map[string]any { return map[string]any{"to": a.To} }

func (a Travel) Applicable(s domain.State) bool {
	st := asState(s)
	if st.market == nil || a.To == st.Location {
		return false
	}
	if _, ok := st.market.Station(a.To); !ok {
		return false
	}
	return st.Money >= st.market.TravelCost
}

func (a Travel) Cost(s domain.State) float64 {
	return float64(asState(s).market.TravelCost)
}

func (a Travel) Apply(s domain.State) domain.State {
	st := asState(s)
	st.Money -= st.market.TravelCost
	st.Location = a.To
	return st
}

// Idle waits one step for the market's idle fee.
type Idle struct{}

func (Idle) Name() string { return ActionIdle }

func (Idle) Params() map[string]any { return nil }

func (Idle) Applicable(s domain.State) bool {
	st := asState(s)
	return st.market != nil && st.Money >= st.market.IdleCost
}

func (Idle) Cost(s domain.State) float64 {
	return float64(asState(s).market.IdleCost)
}

func (Idle) Apply(s domain.State) domain.State {
	st := asState(s)
	st.Money -= st.market.IdleCost
	return st
}
