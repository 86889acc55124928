package domain

// Selection policy names, as accepted by configuration and transports.
const (
	PolicyGreedy     = "greedy"
	PolicyFinalLevel = "final-level"
	PolicyTrend      = "trend"
	PolicyGoal       = "goal"
)

// Policies lists every policy name in a stable order.
var Policies = []string{PolicyGreedy, PolicyFinalLevel, PolicyTrend, PolicyGoal}
