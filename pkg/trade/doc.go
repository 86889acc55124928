/*
Package trade is the trading action domain of the lookahead planner.

A merchant holds money, per-good stock and per-good capacity, and sits at one
station of a Market. Each station quotes, per good, the price it sells at
(what a merchant pays to buy) and the price it buys at (what a merchant earns
by selling). Four actions move a merchant through this world:

  - sell(good): converts the whole stock of a good to money at the station's buy price.
  - buy(good): spends money on as many units as it affords, floored and clamped to free capacity.
  - travel(station): moves to another station for a fixed fee.
  - idle: waits one step for a fixed fee.

World is the authoritative, concurrency-safe holder of merchants and prices.
Planning reads snapshots of it; executing a step writes back through it.
*/
package trade
