package vm

// State represents the lifecycle state of a virtual machine.
type State int

// Virtual machine states.
const (
	Off State = iota
	Starting
	Running
	Suspending
	Suspended
	Unknown
)

var stateNames = map[State]string{
	Off:        "stopped",
	Starting:   "starting",
	Running:    "running",
	Suspending: "suspending",
	Suspended:  "suspended",
	Unknown:    "unknown",
}

// String returns a suitable string representation for the state.
func (s State) String() string {
	name, ok := stateNames[s]
	if !ok {
		return stateNames[Unknown]
	}

	return name
}
