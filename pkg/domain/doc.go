/*
Package domain contains the core types of the lookahead planner.

It defines the vocabulary shared by the search engine, the executor and every
action domain plugged into them. The package is kept pure: no I/O, no
persistence, no logging.

# Key Entities

  - State: an opaque, copyable snapshot of an agent's resources.
  - Action: a parameterized capability with an applicability test, a cost and an effect.
  - Node: one reachable state recorded in a planning tree, linked to its parent by index.
  - Plan: the ordered actions leading from the root state to a selected node.
  - PlanRecord: the persisted form of a plan, as (name, params) steps plus a cursor position.
*/
package domain
