package domain

// Goal is a discrete predicate over the initial state and a candidate state.
type Goal interface {
	Check(before, after State) bool
}

// GoalFunc adapts a plain function to the Goal interface.
type GoalFunc func(before, after State) bool

// Check calls f(before, after).
func (f GoalFunc) Check(before, after State) bool {
	return f(before, after)
}
