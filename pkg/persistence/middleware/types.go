package middleware

import "github.com/aretw0/lookahead/pkg/ports"

// Middleware allows wrapping a PlanStore to add behavior.
type Middleware func(ports.PlanStore) ports.PlanStore
