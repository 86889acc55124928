/*
Package ports defines the driven ports (interfaces) of the lookahead planner.

These interfaces decouple the search engine from the action domains that feed
it and from the infrastructure that stores and serializes its results.

# Key Interfaces

  - ActionGenerator: enumerates candidate actions for a state (the action catalog).
  - ActionResolver: turns a persisted (name, params) step back into an Action.
  - World: the authoritative domain state, read at build time and written by the executor.
  - PlanStore: persists the current plan and cursor position of an agent.
  - DistributedLocker: serializes plan execution and rebuilds across replicas.
*/
package ports
