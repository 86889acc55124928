/*
Package session serializes access to agents' plans.

A Manager wraps a PlanStore with a per-agent lock, optionally backed by a
distributed locker, so that stepping a plan and rebuilding it never overlap
for the same agent, even across replicas sharing one world.
*/
package session
