package domain

// State is a snapshot of the resources an agent controls.
//
// The engine never looks inside a State. It only copies it before handing it
// to an Action, so Clone must return a value that shares no mutable data with
// the receiver.
type State interface {
	Clone() State
}
